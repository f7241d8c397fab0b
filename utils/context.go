// Package utils provides utility functions for the application.
package utils

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Context keys populated by handlers when building operation contexts
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
