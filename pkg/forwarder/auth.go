package forwarder

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/carverauto/otelsink/pkg/models"
)

const defaultAPIKeyHeader = "X-API-Key"

func credential(auth *models.AuthConfig, name string) (string, error) {
	v, ok := auth.Credentials[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s auth requires %q", errMissingCredential, auth.Type, name)
	}

	return v, nil
}

// applyAuthHeader attaches the configured credentials to an outbound HTTP
// request. A nil config means unauthenticated.
func applyAuthHeader(req *http.Request, auth *models.AuthConfig) error {
	if auth == nil {
		return nil
	}

	switch auth.Type {
	case "api_key":
		key, err := credential(auth, "key")
		if err != nil {
			return err
		}

		header := auth.Credentials["header_name"]
		if header == "" {
			header = defaultAPIKeyHeader
		}

		req.Header.Set(header, key)
	case "bearer_token":
		token, err := credential(auth, "token")
		if err != nil {
			return err
		}

		req.Header.Set("Authorization", "Bearer "+token)
	case "basic":
		username, err := credential(auth, "username")
		if err != nil {
			return err
		}

		password, err := credential(auth, "password")
		if err != nil {
			return err
		}

		req.SetBasicAuth(username, password)
	default:
		return fmt.Errorf("%w: %q", errUnsupportedAuth, auth.Type)
	}

	return nil
}

// authMetadata maps the configured credentials onto gRPC metadata for Flight
// calls.
func authMetadata(auth *models.AuthConfig) (map[string]string, error) {
	if auth == nil {
		return nil, nil
	}

	switch auth.Type {
	case "api_key":
		key, err := credential(auth, "key")
		if err != nil {
			return nil, err
		}

		header := auth.Credentials["header_name"]
		if header == "" {
			header = defaultAPIKeyHeader
		}

		return map[string]string{header: key}, nil
	case "bearer_token":
		token, err := credential(auth, "token")
		if err != nil {
			return nil, err
		}

		return map[string]string{"authorization": "Bearer " + token}, nil
	case "basic":
		username, err := credential(auth, "username")
		if err != nil {
			return nil, err
		}

		password, err := credential(auth, "password")
		if err != nil {
			return nil, err
		}

		basic := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))

		return map[string]string{"authorization": "Basic " + basic}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedAuth, auth.Type)
	}
}
