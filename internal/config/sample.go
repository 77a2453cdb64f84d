package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/yourorg/s3-publish/internal/publish"
)

// SampleFile is where --create-config writes its template.
const SampleFile = "config.json"

// WriteSample writes a template configuration to path, replacing any
// existing file.
func WriteSample(path string) error {
	v := viper.New()
	v.SetConfigType("json")
	v.Set(KeyService, "digitalocean")
	v.Set(KeyRegion, "fra1")
	v.Set(KeyAccessKey, "YOUR_ACCESS_KEY")
	v.Set(KeySecretKey, "YOUR_SECRET_KEY")
	v.Set(KeyBucket, "your-bucket-name")
	v.Set(KeyPrefix, "path/to/files/")
	v.Set(KeyRecursive, true)
	v.Set(KeyEndpointURL, "")
	v.Set(KeyDelay, publish.DefaultDelay.String())
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write sample %s: %w", path, err)
	}
	return nil
}
