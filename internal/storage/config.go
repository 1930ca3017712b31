package storage

// DefaultBucket receives collection snapshots when no bucket is configured.
const DefaultBucket = "coursehub-snapshots"

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Enabled reports whether an endpoint was configured.
func (c *MinIOConfig) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

func (c *MinIOConfig) bucket() string {
	if c.Bucket == "" {
		return DefaultBucket
	}
	return c.Bucket
}
