package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	now := time.UnixMilli(1717171717000)
	assert.Equal(t, "p1/1717171717000_scan.pdf", ObjectPath("p1", "scan.pdf", now))
	assert.Equal(t, "p1/1717171717000_scan.pdf", ObjectPath("p1", `C:\Users\me\scan.pdf`, now))
	assert.Equal(t, "p1/1717171717000_attachment", ObjectPath("p1", "", now))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage("http://localhost/storage/v1/object/public/medical-records")

	require.NoError(t, m.Upload(ctx, "p1/1_scan.pdf", strings.NewReader("pdf"), "application/pdf"))
	assert.Error(t, m.Upload(ctx, "p1/1_scan.pdf", strings.NewReader("again"), ""))

	obj, ok := m.Get("p1/1_scan.pdf")
	require.True(t, ok)
	assert.Equal(t, "pdf", string(obj.Data))
	assert.Equal(t, "http://localhost/storage/v1/object/public/medical-records/p1/1_scan.pdf", m.PublicURL("p1/1_scan.pdf"))

	require.NoError(t, m.Remove(ctx, "p1/1_scan.pdf"))
	assert.Equal(t, 0, m.Len())
}
