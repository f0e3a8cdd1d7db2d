package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// Image normalization config
	Imaging ImagingConfig `yaml:"imaging"`

	// Upload limits
	Upload UploadConfig `yaml:"upload"`

	// Debug snapshot storage (optional)
	Storage StorageConfig `yaml:"storage"`

	// Service-to-service authentication (optional)
	Auth AuthConfig `yaml:"auth"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine        string `yaml:"engine"`         // "tesseract"
	Language      string `yaml:"language"`       // OCR language (default: "eng")
	TesseractPath string `yaml:"tesseract_path"` // Binary probed for the health check
}

// ImagingConfig selects the normalization backend
type ImagingConfig struct {
	Backend string `yaml:"backend"` // "native" or "gocv"
}

// UploadConfig bounds accepted payloads
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"` // Default: 10MB
}

// StorageConfig for the MinIO snapshot sink
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
}

// AuthConfig for bearer tokens issued to calling backends
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // Empty disables authentication
	Issuer    string `yaml:"issuer"`
}
