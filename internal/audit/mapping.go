package audit

import "strings"

// MethodAction holds the action and resource derived from a gRPC full method name.
type MethodAction struct {
	Action   string
	Resource string
}

// verbPrefixes maps method name prefixes to audit verbs, checked in order.
var verbPrefixes = []struct{ prefix, action string }{
	{"Get", "get"},
	{"List", "list"},
	{"Create", "create"},
	{"Update", "update"},
	{"Delete", "delete"},
	{"Submit", "submit"},
	{"Approve", "approve"},
	{"Reject", "reject"},
	{"Revoke", "revoke"},
	{"Reset", "reset"},
	{"Suspend", "suspend"},
}

// ParseFullMethod returns action and resource for a gRPC full method such as
// /marketplace.supplier.v1.QuoteService/SubmitQuote (action "submit", resource "quote").
func ParseFullMethod(fullMethod string) MethodAction {
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return MethodAction{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	service := fullMethod[:slash]
	if dot := strings.LastIndex(service, "."); dot >= 0 {
		service = service[dot+1:]
	} else {
		service = ""
	}
	return MethodAction{Action: methodVerb(method), Resource: serviceResource(service)}
}

func serviceResource(service string) string {
	s := strings.TrimSuffix(service, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func methodVerb(method string) string {
	for _, v := range verbPrefixes {
		if strings.HasPrefix(method, v.prefix) && len(method) > len(v.prefix) {
			return v.action
		}
	}
	return strings.ToLower(method)
}
