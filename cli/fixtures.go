package cli

import (
	"time"

	"github.com/evalgo-labs/pipeflow/storetest"
)

var timeNow = time.Now

// storageFixture and alarmFixture build a fresh in-process collaborator
// pair for a single `trigger` invocation; the CLI process exits once the
// cascade completes, so nothing needs to outlive one call.
func storageFixture() *storetest.Storage { return storetest.NewStorage() }

func alarmFixture() *storetest.Alarm { return storetest.NewAlarm() }
