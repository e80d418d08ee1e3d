package schema

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
)

// ToAnthropicTool converts a props schema to an Anthropic tool parameter.
// The tool name is the template key, so a tool call maps back to a
// navigation request one-to-one.
func (o Object) ToAnthropicTool(name, description string) anthropic.ToolParam {
	inputSchema := anthropic.ToolInputSchemaParam{
		Type:       constant.Object("object"),
		Properties: propertiesDocument(o.Properties),
	}

	// Add required fields if present
	if len(o.Required) > 0 {
		inputSchema.Required = o.Required
	}

	return anthropic.ToolParam{
		Name:        name,
		Description: anthropic.String(description),
		InputSchema: inputSchema,
	}
}
