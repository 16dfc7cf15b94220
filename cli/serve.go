package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evalgo-labs/pipeflow/action"
	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/config"
	"github.com/evalgo-labs/pipeflow/encrypt"
	"github.com/evalgo-labs/pipeflow/executor"
	"github.com/evalgo-labs/pipeflow/funcs"
	"github.com/evalgo-labs/pipeflow/httpapi"
	"github.com/evalgo-labs/pipeflow/idgen"
	"github.com/evalgo-labs/pipeflow/roundqueue"
	"github.com/evalgo-labs/pipeflow/storagepg"
	"github.com/evalgo-labs/pipeflow/value"
	"github.com/evalgo-labs/pipeflow/version"
)

var serveCatalogPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP trigger façade",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port")
	serveCmd.Flags().String("db-url", "", "Postgres connection string")
	serveCmd.Flags().String("redis-url", "", "Redis connection string (alarm delivery + round announcements; optional)")
	serveCmd.Flags().StringVar(&serveCatalogPath, "catalog", "", "path to a catalog fixture JSON file (required)")
	serveCmd.MarkFlagRequired("catalog")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("db.url", serveCmd.Flags().Lookup("db-url"))
	viper.BindPFlag("redis.url", serveCmd.Flags().Lookup("redis-url"))
}

func runServe(cmd *cobra.Command, args []string) error {
	serverCfg := config.LoadServerConfig("")
	if port := viper.GetString("port"); port != "" {
		fmt.Sscanf(port, "%d", &serverCfg.Port)
	}
	validator := config.NewValidator()
	validator.RequirePositiveInt("Server.Port", serverCfg.Port)
	if err := validator.Validate(); err != nil {
		return err
	}

	dbCfg := config.LoadDatabaseConfig("DB")
	if url := viper.GetString("db.url"); url != "" {
		dbCfg.URL = url
	}

	pipelineCfg := config.LoadPipelineConfig()
	value.Configure(pipelineCfg.DateFormats, pipelineCfg.DateTimeFormats, pipelineCfg.TimeFormats)

	log := common.ServiceLogger(common.GetEnv("SERVICE_NAME", "pipeflow"), version.GetModuleVersion())
	log.WithFields(map[string]interface{}{
		"db_url":    common.MaskSecret(dbCfg.URL),
		"redis_url": common.MaskSecret(viper.GetString("redis.url")),
	}).Info("starting pipeflow server")

	var cipher *encrypt.AESCipher
	if pipelineCfg.EncryptAESKey != "" && pipelineCfg.EncryptAESIV != "" {
		cipher = encrypt.NewAESCipher(pipelineCfg.EncryptAESKey, pipelineCfg.EncryptAESIV)
	}

	catalog, err := loadCatalog(serveCatalogPath)
	if err != nil {
		return err
	}

	store, err := storagepg.Open(dbCfg.URL)
	if err != nil {
		return fmt.Errorf("connecting to storage: %w", err)
	}
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrating storage schema: %w", err)
	}

	var alarm collab.AlarmDelivery = alarmFixture()
	var announcer executor.RoundAnnouncer
	if redisURL := viper.GetString("redis.url"); redisURL != "" {
		queue, err := roundqueue.New(cmd.Context(), roundqueue.Config{RedisURL: redisURL})
		if err != nil {
			return fmt.Errorf("connecting to round queue: %w", err)
		}
		defer queue.Close()
		alarm = queue
		announcer = queue
	}

	var seq idgen.Sequence
	execDeps := executor.Deps{
		Catalog:  catalog,
		Compiler: compiler.New(catalog),
		ActionDeps: action.Deps{
			Storage: store,
			Alarm:   alarm,
			Encrypt: cipher,
			Log:     log,
		},
		Env:       &funcs.Env{NextSeq: seq.Next, Now: timeNow, JoinDefaultComma: pipelineCfg.FuncJoinDefaultUseComma},
		Announcer: announcer,
	}

	apiCfg := httpapi.ServerConfig{
		Port:            serverCfg.Port,
		Debug:           serverCfg.Debug,
		ReadTimeout:     serverCfg.ReadTimeout,
		WriteTimeout:    serverCfg.WriteTimeout,
		ShutdownTimeout: serverCfg.ShutdownTimeout,
	}
	e := httpapi.NewEchoServer(apiCfg, httpapi.Deps{
		Catalog:     catalog,
		ExecDeps:    execDeps,
		ServiceName: "pipeflow",
		Version:     version.GetModuleVersion(),
	})

	go func() {
		if err := httpapi.StartServer(e, apiCfg); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "server stopped:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return httpapi.GracefulShutdown(e, apiCfg)
}
