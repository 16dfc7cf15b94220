package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalgo-labs/pipeflow/action"
	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/config"
	"github.com/evalgo-labs/pipeflow/encrypt"
	"github.com/evalgo-labs/pipeflow/executor"
	"github.com/evalgo-labs/pipeflow/funcs"
	"github.com/evalgo-labs/pipeflow/idgen"
	"github.com/evalgo-labs/pipeflow/schema"
	pftrigger "github.com/evalgo-labs/pipeflow/trigger"
	"github.com/evalgo-labs/pipeflow/value"
	"github.com/evalgo-labs/pipeflow/version"
)

var (
	triggerCatalogPath string
	triggerFilePath    string
)

// triggerFile is the on-disk shape --file carries: a principal plus the
// trigger_data tuple the external interfaces define.
type triggerFile struct {
	Principal struct {
		TenantID string `json:"tenantId"`
		UserID   string `json:"userId"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	} `json:"principal"`
	Code        string      `json:"code"`
	TriggerType string      `json:"triggerType"`
	Data        value.Value `json:"data"`
	TenantID    string      `json:"tenantId"`
	TraceID     string      `json:"traceId"`
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "run one trigger request through an in-process catalog/storage pair",
	RunE:  runTrigger,
}

func init() {
	triggerCmd.Flags().StringVar(&triggerCatalogPath, "catalog", "", "path to a catalog fixture JSON file (required)")
	triggerCmd.Flags().StringVar(&triggerFilePath, "file", "", "path to a trigger request JSON file (required)")
	triggerCmd.MarkFlagRequired("catalog")
	triggerCmd.MarkFlagRequired("file")
}

func runTrigger(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(triggerCatalogPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(triggerFilePath)
	if err != nil {
		return err
	}
	var req triggerFile
	if err := json.Unmarshal(raw, &req); err != nil {
		return err
	}

	principal := pftrigger.Principal{
		TenantID: req.Principal.TenantID,
		UserID:   req.Principal.UserID,
		Name:     req.Principal.Name,
		Role:     pftrigger.Role(req.Principal.Role),
	}
	data := pftrigger.Data{
		Code:        req.Code,
		TriggerType: schema.TriggerType(req.TriggerType),
		Record:      req.Data,
		TenantID:    req.TenantID,
		TraceID:     req.TraceID,
	}

	validated, err := pftrigger.Validate(principal, data)
	if err != nil {
		return err
	}

	topic, found, err := catalog.TopicByCode(validated.Data.TenantID, validated.Data.Code)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("topic %q not found", validated.Data.Code)
	}
	if err := pftrigger.CheckTopicKind(topic.Kind, validated.Data.TriggerType); err != nil {
		return err
	}

	pipelineCfg := config.LoadPipelineConfig()
	value.Configure(pipelineCfg.DateFormats, pipelineCfg.DateTimeFormats, pipelineCfg.TimeFormats)

	var cipher *encrypt.AESCipher
	if pipelineCfg.EncryptAESKey != "" && pipelineCfg.EncryptAESIV != "" {
		cipher = encrypt.NewAESCipher(pipelineCfg.EncryptAESKey, pipelineCfg.EncryptAESIV)
	}

	log := common.ServiceLogger(common.GetEnv("SERVICE_NAME", "pipeflow"), version.GetModuleVersion())

	storage := storageFixture()
	var seq idgen.Sequence
	env := &funcs.Env{NextSeq: seq.Next, Now: timeNow, JoinDefaultComma: pipelineCfg.FuncJoinDefaultUseComma}

	deps := executor.Deps{
		Catalog:  catalog,
		Compiler: compiler.New(catalog),
		ActionDeps: action.Deps{
			Storage: storage,
			Alarm:   alarmFixture(),
			Encrypt: cipher,
			Log:     log,
		},
		Env: env,
	}

	task := executor.Task{
		TenantID:  validated.Data.TenantID,
		TopicID:   topic.ID,
		Trigger:   validated.Data.TriggerType,
		Record:    validated.Data.Record,
		Principal: principal.UserID,
		TraceID:   validated.Data.TraceID,
	}

	logs, err := executor.NewContext(deps, task).Run(context.Background())
	for _, l := range logs {
		fmt.Printf("pipeline %s: %s (trace %s)\n", l.PipelineID, l.Status, l.TraceID)
	}
	if err != nil {
		return err
	}
	return nil
}
