// Package medicamentsparser imports catalog entries from the public French
// drug database (BDPM) specialties file.
package medicamentsparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giygas/pharmacie-api/logging"
	"golang.org/x/text/encoding/charmap"
)

// DefaultSpecialitesURL is where the BDPM publishes CIS_bdpm.txt.
const DefaultSpecialitesURL = "https://base-donnees-publique.medicaments.gouv.fr/download/file/CIS_bdpm.txt"

// maxSourceSize caps a download. A larger response is an error, never a
// truncated import.
var maxSourceSize int64 = 64 << 20

// ErrSourceTooLarge is returned when a download exceeds maxSourceSize.
var ErrSourceTooLarge = errors.New("source exceeds the download size limit")

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// Open returns the content of source, decoded to UTF-8. Sources starting with
// http:// or https:// are downloaded, anything else is read as a local file.
func Open(ctx context.Context, source string) (io.Reader, error) {
	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = download(ctx, source)
	} else {
		body, err = os.ReadFile(filepath.Clean(source))
	}
	if err != nil {
		return nil, err
	}
	return decode(body), nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	response, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %d", url, response.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(response.Body, maxSourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(bodyBytes)) > maxSourceSize {
		return nil, fmt.Errorf("failed to download %s: %w (%d bytes)", url, ErrSourceTooLarge, maxSourceSize)
	}
	logging.Debug("BDPM file downloaded", "url", url, "bytes", len(bodyBytes))
	return bodyBytes, nil
}

// decode passes UTF-8 through and reads anything else as ISO-8859-1, the
// encoding the BDPM files have historically been published in.
func decode(b []byte) io.Reader {
	if utf8.Valid(b) {
		return bytes.NewReader(b)
	}
	return charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(b))
}
