package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/cmd.schema.json
var cmdSchemaText string

var cmdSchema = jsonschema.MustCompileString("cmd.schema.json", cmdSchemaText)

// ValidateCmd checks a raw frame against the command schema and decodes it.
// Frames from remote operators are untrusted; nothing reaches the core loop
// without passing here.
func ValidateCmd(raw []byte) (CmdMsg, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return CmdMsg{}, fmt.Errorf("cmd frame: %w", err)
	}
	if err := cmdSchema.Validate(v); err != nil {
		return CmdMsg{}, fmt.Errorf("cmd frame: %w", err)
	}
	var cmd CmdMsg
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return CmdMsg{}, fmt.Errorf("cmd frame: %w", err)
	}
	return cmd, nil
}
