package cobol

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
)

func TestParseFileFixedFormat(t *testing.T) {
	result, err := ParseFile(filepath.Join("testdata", "payroll.cbl"))
	require.NoError(t, err)
	prog := result.Program

	assert.Equal(t, document.Metadata{File: "payroll.cbl", Format: document.FormatFixed}, prog.Metadata)

	assert.Equal(t, []string{"PROGRAM-ID", "AUTHOR"}, prog.Identification.Keys())
	author, _ := prog.Identification.Get("AUTHOR")
	assert.Equal(t, "J SMITH", author)

	config, ok := prog.Environment.Get("CONFIGURATION")
	require.True(t, ok)
	assert.Equal(t, []string{"SOURCE-COMPUTER. IBM-370."}, config)

	var names []string
	for _, item := range prog.Data {
		names = append(names, item.Name)
		require.NotNil(t, item.Section)
		assert.Equal(t, "WORKING-STORAGE", *item.Section)
	}
	assert.Equal(t, []string{"WS-RECORD", "WS-NAME", "WS-AMOUNT"}, names)

	assert.Equal(t, []string{document.RootParagraph, "MAIN-PARA", "INIT-PARA"}, prog.Procedure.Keys())
	mainPara, _ := prog.Paragraph("MAIN-PARA")
	want := []document.Statement{
		document.Perform{Header: "INIT-PARA"},
		document.If{
			Condition: "WS-AMOUNT > 100",
			Then:      []document.Statement{document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'BIG'"}},
			Else:      []document.Statement{document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'SMALL'"}},
		},
		document.Generic{Verb: "STOP", Text: "STOP RUN"},
	}
	if diff := cmp.Diff(want, mainPara, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("MAIN-PARA mismatch (-want +got):\n%s", diff)
	}
	initPara, _ := prog.Paragraph("INIT-PARA")
	assert.Equal(t, []document.Statement{document.Move{Text: "MOVE ZERO TO WS-AMOUNT"}}, initPara)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, errors.MalformedDataEntry, result.Diagnostics[0].Kind)
	assert.Equal(t, 13, result.Diagnostics[0].Line)

	require.NoError(t, document.ValidateProgram(prog))
}

func TestParseFileFreeFormat(t *testing.T) {
	result, err := ParseFile(filepath.Join("testdata", "hello.cob"))
	require.NoError(t, err)
	prog := result.Program

	assert.Equal(t, document.FormatFree, prog.Metadata.Format)
	id, _ := prog.Identification.Get("PROGRAM-ID")
	assert.Equal(t, "HELLO", id)

	rootStmts, _ := prog.Paragraph(document.RootParagraph)
	assert.Equal(t, []document.Statement{
		document.Generic{Verb: "DISPLAY", Text: `DISPLAY "HELLO, WORLD"`},
		document.Generic{Verb: "GOBACK", Text: "GOBACK"},
	}, rootStmts)
	assert.Empty(t, result.Diagnostics)
}

func TestParseEmptyInput(t *testing.T) {
	result, err := Parse("empty.cbl", nil)
	require.NoError(t, err)

	data, err := document.EncodeJSON(result.Program)
	require.NoError(t, err)
	want := `{"metadata":{"file":"empty.cbl","format":"FIXED"},` +
		`"identification_division":{},"environment_division":{},` +
		`"data_division":[],"procedure_division":{"_ROOT_":[]}}`
	assert.Equal(t, want, string(data))
}

func TestParseDeterministic(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "payroll.cbl"))
	require.NoError(t, err)

	var outputs [][]byte
	for range 3 {
		result, err := Parse("payroll.cbl", src)
		require.NoError(t, err)
		data, err := document.EncodeJSONIndent(result.Program, 4)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, string(outputs[0]), string(outputs[1]))
	assert.Equal(t, string(outputs[0]), string(outputs[2]))
}

func TestParseMetadataUsesBaseName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"prog.cbl", "prog.cbl"},
		{"/src/cobol/prog.cbl", "prog.cbl"},
		{`C:\src\prog.cbl`, "prog.cbl"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.name, []byte("PROCEDURE DIVISION."))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Program.Metadata.File)
		})
	}
}

func TestParseFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "nope.cbl"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrFileNotFound))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := ParseFile(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrInputRead))
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, os.ErrClosed }

func TestParseReader(t *testing.T) {
	result, err := ParseReader("upload.cbl", strings.NewReader("PROCEDURE DIVISION.\nSTOP RUN."))
	require.NoError(t, err)
	assert.Equal(t, "upload.cbl", result.Program.Metadata.File)

	_, err = ParseReader("upload.cbl", failingReader{})
	assert.True(t, errors.IsErrorType(err, errors.ErrInputRead))
}

func TestParseDepthLimit(t *testing.T) {
	src := "PROCEDURE DIVISION.\n" + strings.Repeat("IF A = 1\n", 4) + "MOVE 1 TO B."

	_, err := Parse("deep.cbl", []byte(src), WithMaxDepth(3))
	assert.True(t, errors.IsErrorType(err, errors.ErrNestingTooDeep))

	_, err = Parse("deep.cbl", []byte(src), WithMaxDepth(4))
	assert.NoError(t, err)
}

func TestParseTelemetryAndDebug(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "payroll.cbl"))
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := Parse("payroll.cbl", src, WithTelemetry(), WithDebugEvents(), WithLogger(logger))
	require.NoError(t, err)

	require.NotNil(t, result.Telemetry)
	assert.Equal(t, 3, result.Telemetry.ParagraphCount)
	assert.Equal(t, 6, result.Telemetry.StatementCount)
	assert.GreaterOrEqual(t, result.Telemetry.TotalTime, result.Telemetry.ParseTime)
	assert.NotEmpty(t, result.DebugEvents)

	assert.Contains(t, logs.String(), "[COBOL] normalized")
	assert.Contains(t, logs.String(), "[LEXER] done")
	assert.Contains(t, logs.String(), "[PARSER] done")
	assert.Contains(t, logs.String(), "MalformedDataEntry")
}
