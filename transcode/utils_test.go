/*
DESCRIPTION
  utils_test.go provides a logger that logs through the testing package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transcode

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"
)

// testLogger will allow logging to be done by the testing pkg.
type testLogger testing.T

var levelNames = map[int8]string{
	logging.Debug:   "debug",
	logging.Info:    "info",
	logging.Warning: "warning",
	logging.Error:   "error",
	logging.Fatal:   "fatal",
}

func (tl *testLogger) Debug(msg string, args ...interface{})   { tl.Log(logging.Debug, msg, args...) }
func (tl *testLogger) Info(msg string, args ...interface{})    { tl.Log(logging.Info, msg, args...) }
func (tl *testLogger) Warning(msg string, args ...interface{}) { tl.Log(logging.Warning, msg, args...) }
func (tl *testLogger) Error(msg string, args ...interface{})   { tl.Log(logging.Error, msg, args...) }
func (tl *testLogger) Fatal(msg string, args ...interface{})   { tl.Log(logging.Fatal, msg, args...) }
func (tl *testLogger) SetLevel(lvl int8)                       {}

func (tl *testLogger) Log(lvl int8, msg string, args ...interface{}) {
	var kv strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&kv, " %v:%q", args[i], fmt.Sprint(args[i+1]))
	}
	t := (*testing.T)(tl)
	if lvl == logging.Fatal {
		t.Fatalf("%s: %s%s", levelNames[lvl], msg, kv.String())
	}
	t.Logf("%s: %s%s", levelNames[lvl], msg, kv.String())
}
