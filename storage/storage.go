// Package storage is the object storage boundary used for medical record
// attachments.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

const DefaultBucket = "medical-records"

type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) error
	PublicURL(objectPath string) string
	Remove(ctx context.Context, objectPaths ...string) error
}

// ObjectPath builds "<owner>/<unix millis>_<file name>".
func ObjectPath(owner, fileName string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return fmt.Sprintf("%s/%d_%s", owner, now.UnixMilli(), name)
}
