// Package services holds the static table of known S3-compatible providers
// and the formatting helpers derived from it.
package services

import (
	"sort"
	"strings"
)

// Custom is the service id for an S3-compatible provider outside the table.
const Custom = "custom"

// Profile describes an S3-compatible provider.
type Profile struct {
	ID               string
	Name             string
	EndpointTemplate string // "{region}" is substituted; empty means SDK default endpoints
	Regions          []string
	PathStyle        bool
}

var profiles = map[string]Profile{
	"aws": {
		ID:      "aws",
		Name:    "Amazon S3",
		Regions: []string{"us-east-1", "us-west-2", "eu-west-1", "ap-southeast-1"},
	},
	"digitalocean": {
		ID:               "digitalocean",
		Name:             "DigitalOcean Spaces",
		EndpointTemplate: "https://{region}.digitaloceanspaces.com",
		Regions:          []string{"nyc3", "ams3", "sgp1", "fra1", "sfo3", "tor1", "blr1"},
	},
	"wasabi": {
		ID:               "wasabi",
		Name:             "Wasabi",
		EndpointTemplate: "https://s3.{region}.wasabisys.com",
		Regions:          []string{"us-east-1", "us-east-2", "us-west-1", "eu-central-1", "ap-northeast-1"},
	},
	"backblaze": {
		ID:               "backblaze",
		Name:             "Backblaze B2",
		EndpointTemplate: "https://s3.{region}.backblazeb2.com",
		Regions:          []string{"us-west-002", "eu-central-003"},
	},
	"minio": {
		ID:               "minio",
		Name:             "MinIO",
		EndpointTemplate: "http://localhost:9000",
		Regions:          []string{"us-east-1"},
		PathStyle:        true,
	},
}

// Lookup returns the profile for id. The custom id yields an empty profile
// with ok set, any other unknown id yields ok=false.
func Lookup(id string) (Profile, bool) {
	if id == Custom {
		return Profile{ID: Custom, Name: "Custom S3-compatible service"}, true
	}
	p, ok := profiles[id]
	return p, ok
}

// IDs lists the known service ids, sorted, followed by "custom".
func IDs() []string {
	out := make([]string, 0, len(profiles)+1)
	for id := range profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return append(out, Custom)
}

// DisplayName returns the human name of a service, or the id itself when unknown.
func DisplayName(id string) string {
	if p, ok := Lookup(id); ok && p.Name != "" {
		return p.Name
	}
	return id
}

// ResolveEndpoint picks the endpoint a session should use. An explicit
// endpoint always wins; otherwise the profile template is filled in with the
// region. An empty result means the SDK resolves AWS endpoints itself.
func ResolveEndpoint(service, region, explicit string) string {
	if explicit != "" {
		return explicit
	}
	p, ok := profiles[service]
	if !ok || p.EndpointTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(p.EndpointTemplate, "{region}", region)
}
