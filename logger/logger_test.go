// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"testing"

	log "github.com/absmach/edgesync/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Env vars needed for testing Fatal in subprocess.
const (
	testMsg     = "TEST_MSG"
	testFlag    = "TEST_FLAG"
	testFlagVal = "assert_test"
)

var _ io.Writer = (*mockWriter)(nil)

type mockWriter struct {
	value []byte
}

func (writer *mockWriter) Write(p []byte) (int, error) {
	writer.value = p
	return len(p), nil
}

func (writer *mockWriter) Read() (logMsg, error) {
	var output logMsg
	err := json.Unmarshal(writer.value, &output)
	return output, err
}

type logMsg struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Fatal   string `json:"fatal,omitempty"`
}

func TestLevels(t *testing.T) {
	cases := []struct {
		desc   string
		level  string
		log    func(l log.Logger, msg string)
		input  string
		output logMsg
	}{
		{
			desc:   "debug log on debug level",
			level:  log.Debug.String(),
			log:    log.Logger.Debug,
			input:  "input_string",
			output: logMsg{log.Debug.String(), "input_string", ""},
		},
		{
			desc:   "debug log on info level is dropped",
			level:  log.Info.String(),
			log:    log.Logger.Debug,
			input:  "input_string",
			output: logMsg{},
		},
		{
			desc:   "info log on info level",
			level:  log.Info.String(),
			log:    log.Logger.Info,
			input:  "",
			output: logMsg{log.Info.String(), "", ""},
		},
		{
			desc:   "warn log on error level is dropped",
			level:  log.Error.String(),
			log:    log.Logger.Warn,
			input:  "input_string",
			output: logMsg{},
		},
		{
			desc:   "warn log on warn level",
			level:  log.Warn.String(),
			log:    log.Logger.Warn,
			input:  "input_string",
			output: logMsg{log.Warn.String(), "input_string", ""},
		},
		{
			desc:   "error log on debug level",
			level:  log.Debug.String(),
			log:    log.Logger.Error,
			input:  "input_string",
			output: logMsg{log.Error.String(), "input_string", ""},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			writer := mockWriter{}
			logger, err := log.New(&writer, tc.level)
			require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
			tc.log(logger, tc.input)
			output, _ := writer.Read()
			assert.Equal(t, tc.output, output, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.output, output))
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := log.New(&mockWriter{}, "verbose")
	assert.NotNil(t, err, "expected error for unknown level")
}

func TestFatal(t *testing.T) {
	// Executed inside the subprocess spawned below.
	if os.Getenv(testFlag) == testFlagVal {
		logger, err := log.New(os.Stderr, log.Error.String())
		require.Nil(t, err)
		logger.Fatal(os.Getenv(testMsg))
		return
	}

	writer := mockWriter{}
	cmd := exec.Command(os.Args[0], "-test.run=TestFatal")
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%s", testFlag, testFlagVal), fmt.Sprintf("%s=%s", testMsg, "input_string"))
	cmd.Stderr = &writer
	err := cmd.Run()
	e, ok := err.(*exec.ExitError)
	require.True(t, ok && !e.Success(), "subprocess ran successfully, want non-zero exit status")
	res, err := writer.Read()
	require.Nil(t, err, "required successful buffer read")
	assert.Equal(t, 1, e.ExitCode())
	assert.Equal(t, logMsg{Fatal: "input_string"}, res)
}
