// Package blob stores uploaded images and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	BucketVehicleImages = "vehicle-images"
	BucketIDCards       = "id-cards"
)

var (
	ErrExists      = errors.New("object already exists")
	ErrInvalidPath = errors.New("invalid object path")
)

// File is one uploaded file as received from a client.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Store uploads an object and returns a publicly resolvable URL.
type Store interface {
	Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (string, error)
}

// DiskStore keeps objects under Root/<bucket>/<path> and serves them from
// BaseURL/media/<bucket>/<path>.
type DiskStore struct {
	Root    string
	BaseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *DiskStore) Upload(ctx context.Context, bucket, objectPath string, body io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanObjectPath(bucket, objectPath)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(d.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("upload %s: %w", clean, err)
	}
	// O_EXCL: uploads never overwrite
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("upload %s: %w", clean, ErrExists)
		}
		return "", fmt.Errorf("upload %s: %w", clean, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("upload %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", clean, err)
	}
	return d.BaseURL + "/media/" + clean, nil
}

func cleanObjectPath(bucket, objectPath string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\.`) {
		return "", ErrInvalidPath
	}
	if objectPath == "" || strings.Contains(objectPath, `\`) || strings.HasPrefix(objectPath, "/") {
		return "", ErrInvalidPath
	}
	p := path.Clean(objectPath)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", ErrInvalidPath
	}
	return bucket + "/" + p, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ObjectName builds "<unix-millis>-<6 base36 chars>.<ext>" from an uploaded
// filename; the extension defaults to jpg.
func ObjectName(filename string, now time.Time, rnd *rand.Rand) string {
	ext := "jpg"
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = strings.ToLower(filename[i+1:])
	}
	var suffix [6]byte
	for i := range suffix {
		suffix[i] = base36[rnd.Intn(len(base36))]
	}
	return fmt.Sprintf("%d-%s.%s", now.UnixMilli(), suffix[:], ext)
}

// VehiclePath is the object path of a vehicle image.
func VehiclePath(filename string, now time.Time, rnd *rand.Rand) string {
	return "vehicles/" + ObjectName(filename, now, rnd)
}

// IDCardPath is the object path of a member's identity document.
func IDCardPath(userID, filename string, now time.Time, rnd *rand.Rand) string {
	return userID + "/" + ObjectName(filename, now, rnd)
}
