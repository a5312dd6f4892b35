package upstream

import (
	"fmt"
	"net/url"
	"strings"
)

// DeploymentPlaceholder is replaced with the escaped deployment name.
const DeploymentPlaceholder = "{deployment}"

// Route maps an inbound proxy path to an upstream path.
type Route struct {
	// Name labels logs and metrics.
	Name string

	// Path is the inbound path served by the proxy.
	Path string

	// PathTemplate is the upstream path, optionally containing
	// DeploymentPlaceholder.
	PathTemplate string

	// UsesDeployment selects the deployment-scoped API surface and its
	// api-version. Routes without it use the v1 surface.
	UsesDeployment bool
}

var (
	// ChatCompletions forwards to the deployment-scoped chat completions API.
	ChatCompletions = Route{
		Name:           "chat_completions",
		Path:           "/v1/chat/completions",
		PathTemplate:   "/openai/deployments/" + DeploymentPlaceholder + "/chat/completions",
		UsesDeployment: true,
	}

	// Responses forwards to the v1 responses API.
	Responses = Route{
		Name:         "responses",
		Path:         "/v1/responses",
		PathTemplate: "/openai/v1/responses",
	}
)

// Routes returns every route the proxy serves.
func Routes() []Route {
	return []Route{ChatCompletions, Responses}
}

// APIVersion returns the api-version the route uses under target.
func (r Route) APIVersion(t Target) string {
	if r.UsesDeployment {
		return t.APIVersion
	}
	return t.V1APIVersion
}

// BuildURL returns the upstream URL for route. Trailing slashes on the base
// are ignored and the deployment is path-escaped.
func BuildURL(t Target, r Route) (string, error) {
	base := strings.TrimRight(t.BaseURL, "/")
	if base == "" {
		return "", fmt.Errorf("upstream base URL is empty")
	}

	path := r.PathTemplate
	if r.UsesDeployment {
		if t.Deployment == "" {
			return "", fmt.Errorf("route %s requires a deployment", r.Name)
		}
		path = strings.ReplaceAll(path, DeploymentPlaceholder, url.PathEscape(t.Deployment))
	}

	q := url.Values{}
	q.Set("api-version", r.APIVersion(t))

	return base + path + "?" + q.Encode(), nil
}
