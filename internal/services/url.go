package services

import (
	"fmt"
	"strings"
)

// URLFor returns the browsable virtual-hosted-style URL of an object.
func URLFor(service, region, endpointURL, bucket, key string) string {
	switch {
	case service == "aws":
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
	case service == "digitalocean":
		return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", bucket, region, key)
	case endpointURL != "":
		host := strings.TrimPrefix(strings.TrimPrefix(endpointURL, "https://"), "http://")
		host = strings.TrimSuffix(host, "/")
		return fmt.Sprintf("https://%s.%s/%s", bucket, host, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	}
}
