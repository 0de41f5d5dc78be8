package config

import (
	"os"
	"strconv"
)

type Config struct {
	// CRM (Dynamics OData)
	CRMBaseURL     string
	CRMBearerToken string

	// Directory web service (legacy SOAP endpoint, usually same host as CRM)
	DirectoryBaseURL   string
	DirectoryBasicUser string
	DirectoryBasicPass string

	// SFTP drop folder for sync reports
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

func Load() Config {
	crmBase := getenv("CRM_BASE_URL", "http://crm.contoso.local")

	return Config{
		// CRM
		CRMBaseURL:     crmBase,
		CRMBearerToken: os.Getenv("CRM_BEARER_TOKEN"),

		// Directory
		DirectoryBaseURL:   getenv("DIRECTORY_BASE_URL", crmBase),
		DirectoryBasicUser: os.Getenv("DIRECTORY_BASIC_USER"),
		DirectoryBasicPass: os.Getenv("DIRECTORY_BASIC_PASS"),

		// SFTP
		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/reports"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
