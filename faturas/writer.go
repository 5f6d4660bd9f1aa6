package faturas

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
)

// FileName builds "<base> - <MM>|<YYYY>.pdf" from a MM/YYYY period.
func FileName(fileNameBase, period string) (string, error) {
	month, year, ok := strings.Cut(period, "/")
	if !ok || month == "" || year == "" {
		return "", fmt.Errorf("%w: period %q is not MM/YYYY", equatorial.ErrParse, period)
	}
	return fmt.Sprintf("%s - %s|%s.pdf", fileNameBase, month, year), nil
}

// SavePdf decodes the payload and writes it to the file named after base and
// period, replacing any file already there. It returns the written path.
func SavePdf(payload equatorial.PdfPayload, period, fileNameBase string) (path string, err error) {
	data, err := base64.StdEncoding.Strict().DecodeString(payload.Base64Data)
	if err != nil {
		return "", fmt.Errorf("%w: pdf payload: %v", equatorial.ErrDecode, err)
	}

	path, err = FileName(fileNameBase, period)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", equatorial.ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", equatorial.ErrIO, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", equatorial.ErrIO, err)
	}
	return path, nil
}
