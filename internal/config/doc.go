// Package config manages the user configuration stored at ~/.mip/config.yaml.
package config
