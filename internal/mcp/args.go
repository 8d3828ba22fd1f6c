package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func argumentsOf(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return argsMap, nil
}

// parseStringArg extracts a string argument from an MCP arguments map.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return str, nil
}

// parseIntArg extracts an integer argument. MCP sends numbers as float64.
func parseIntArg(argsMap map[string]interface{}, key string, defaultVal int) int {
	switch v := argsMap[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultVal
	}
}
