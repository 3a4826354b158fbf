// Package gateway implements the HTTP transport to the BitingLip gateway:
// request descriptors built from a static (resource, verb) route table, and
// a stateless client applying the timeout/retry policy.
package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Resource is the noun a command operates on.
type Resource string

const (
	ResourceCluster Resource = "cluster"
	ResourceModels  Resource = "models"
	ResourceWorkers Resource = "workers"
	ResourceTasks   Resource = "tasks"
)

// Verb is the action requested on a resource.
type Verb string

const (
	VerbList       Verb = "list"
	VerbStatus     Verb = "status"
	VerbShow       Verb = "show"
	VerbHealth     Verb = "health"
	VerbDownload   Verb = "download"
	VerbProgress   Verb = "progress"
	VerbAssign     Verb = "assign"
	VerbUnload     Verb = "unload"
	VerbRegister   Verb = "register"
	VerbDeregister Verb = "deregister"
	VerbUpdate     Verb = "update"
	VerbPing       Verb = "ping"
	VerbCreate     Verb = "create"
	VerbDelete     Verb = "delete"
	VerbCancel     Verb = "cancel"
)

// route binds one (resource, verb) pair to an HTTP method and path
// template. Path templates use {name} placeholders filled from descriptor
// parameters. Adding a command means adding one entry here.
type route struct {
	method string
	path   string
}

var routes = map[Resource]map[Verb]route{
	ResourceCluster: {
		VerbStatus: {http.MethodGet, "/api/v1/cluster/status"},
		VerbHealth: {http.MethodGet, "/api/v1/health/{component}"},
	},
	ResourceModels: {
		VerbList:     {http.MethodGet, "/api/v1/models"},
		VerbShow:     {http.MethodGet, "/api/v1/models/{name}"},
		VerbRegister: {http.MethodPost, "/api/v1/models"},
		VerbDelete:   {http.MethodDelete, "/api/v1/models/{name}"},
		VerbDownload: {http.MethodPost, "/api/v1/models/download"},
		VerbProgress: {http.MethodGet, "/api/v1/models/download/{id}/progress"},
		VerbAssign:   {http.MethodPost, "/api/v1/models/assign"},
		VerbUnload:   {http.MethodDelete, "/api/v1/models/unload"},
	},
	ResourceWorkers: {
		VerbList:       {http.MethodGet, "/api/v1/workers"},
		VerbShow:       {http.MethodGet, "/api/v1/workers/{id}"},
		VerbRegister:   {http.MethodPost, "/api/v1/workers"},
		VerbDeregister: {http.MethodDelete, "/api/v1/workers/{id}"},
		VerbUpdate:     {http.MethodPut, "/api/v1/workers/{id}"},
		VerbPing:       {http.MethodPost, "/api/v1/workers/{id}/ping"},
	},
	ResourceTasks: {
		VerbList:   {http.MethodGet, "/api/v1/tasks"},
		VerbStatus: {http.MethodGet, "/api/v1/tasks/{id}"},
		VerbCreate: {http.MethodPost, "/api/v1/tasks"},
		VerbCancel: {http.MethodPost, "/api/v1/tasks/{id}/cancel"},
	},
}

// Descriptor is one fully constructed gateway request. It is immutable once
// built; the client never modifies it during a call.
type Descriptor struct {
	Resource Resource
	Verb     Verb
	Method   string
	Path     string // placeholders already expanded and escaped
	Query    url.Values
	Body     any // marshaled as JSON when non-nil
}

// NewDescriptor resolves the route for a (resource, verb) pair and expands
// its path template with params. Every placeholder must have a non-empty
// param value.
func NewDescriptor(resource Resource, verb Verb, params map[string]string, query url.Values, body any) (*Descriptor, error) {
	verbs, ok := routes[resource]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}
	rt, ok := verbs[verb]
	if !ok {
		return nil, fmt.Errorf("resource %q does not support verb %q", resource, verb)
	}

	path, err := expandPath(rt.path, params)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		Resource: resource,
		Verb:     verb,
		Method:   rt.method,
		Path:     path,
		Query:    query,
		Body:     body,
	}, nil
}

func expandPath(template string, params map[string]string) (string, error) {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := seg[1 : len(seg)-1]
		val, ok := params[name]
		if !ok || val == "" {
			return "", fmt.Errorf("missing path parameter %q", name)
		}
		segments[i] = url.PathEscape(val)
	}
	return strings.Join(segments, "/"), nil
}
