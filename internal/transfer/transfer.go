// Package transfer implements the task execution pipeline's input staging
// step (§4.8 step 3, §6's path/URI model): resolving a local path straight
// through, and fetching a remote URI (http/https, s3, gs, az) to a local
// cache file before a task's command ever sees it. file:// URIs are
// rewritten to local paths without copying.
//
// Client construction for each cloud scheme is grounded on
// upbound-up's usage-report readers: internal/usage/report/aws/aws.go
// (aws-sdk-go session.NewSession + s3.New), internal/usage/report/gcs/
// gcs.go (cloud.google.com/go/storage.NewClient), and
// cmd/up/space/billing/export.go (azidentity.NewDefaultAzureCredential +
// azblob.NewClient) — the only places anywhere in the examples pack that
// construct these three SDKs' clients.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"google.golang.org/api/iterator"
)

// Transferer resolves a path/URI (§6) to a local filesystem path, fetching
// remote content into cacheDir as needed, and lists a remote directory's
// members when asked to stage a Directory input.
type Transferer interface {
	Fetch(ctx context.Context, uri string) (localPath string, err error)
	List(ctx context.Context, uri string) ([]string, error)
}

// Local is the default Transferer: file:// and bare paths resolve without
// any network access; http(s)/s3/gs/az URIs are downloaded into cacheDir.
type Local struct {
	cacheDir string
	client   *http.Client
}

// New returns a Transferer that caches remote fetches under cacheDir.
func New(cacheDir string) *Local {
	return &Local{cacheDir: cacheDir, client: http.DefaultClient}
}

// Fetch implements Transferer.
func (l *Local) Fetch(ctx context.Context, uri string) (string, error) {
	u, scheme, ok := parseSchemed(uri)
	if !ok {
		// No recognized scheme: treat as an already-local path (§6 "a
		// local path or URI").
		return uri, nil
	}
	switch scheme {
	case "file":
		return u.Path, nil
	case "http", "https":
		return l.fetchHTTP(ctx, uri)
	case "s3":
		return l.fetchS3(ctx, u)
	case "gs":
		return l.fetchGCS(ctx, u)
	case "az":
		return l.fetchAzure(ctx, u)
	default:
		return "", fmt.Errorf("transfer: unsupported URI scheme %q", scheme)
	}
}

// List implements Transferer, enumerating a remote directory's members
// (§6 "remote directories enumerated via scheme-appropriate listing").
func (l *Local) List(ctx context.Context, uri string) ([]string, error) {
	u, scheme, ok := parseSchemed(uri)
	if !ok || scheme == "file" {
		path := uri
		if ok {
			path = u.Path
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, filepath.Join(path, e.Name()))
		}
		return names, nil
	}
	switch scheme {
	case "s3":
		return l.listS3(ctx, u)
	case "gs":
		return l.listGCS(ctx, u)
	case "az":
		return l.listAzure(ctx, u)
	default:
		return nil, fmt.Errorf("transfer: unsupported URI scheme %q", scheme)
	}
}

func parseSchemed(raw string) (*url.URL, string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, "", false
	}
	return u, u.Scheme, true
}

func (l *Local) destPath(uri string) (string, error) {
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return "", err
	}
	name := strings.ReplaceAll(strings.Trim(uri, "/"), "/", "_")
	return filepath.Join(l.cacheDir, name), nil
}

func (l *Local) fetchHTTP(ctx context.Context, uri string) (string, error) {
	dest, err := l.destPath(uri)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transfer: fetch %s: status %s", uri, resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}
	return dest, nil
}

func (l *Local) fetchS3(ctx context.Context, u *url.URL) (string, error) {
	dest, err := l.destPath(u.String())
	if err != nil {
		return "", err
	}
	sess, err := session.NewSession(&aws.Config{})
	if err != nil {
		return "", fmt.Errorf("transfer: s3 session: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	downloader := s3manager.NewDownloader(sess)
	key := strings.TrimPrefix(u.Path, "/")
	if _, err := downloader.DownloadWithContext(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	}); err != nil {
		return "", fmt.Errorf("transfer: s3 download %s: %w", u.String(), err)
	}
	return dest, nil
}

func (l *Local) listS3(ctx context.Context, u *url.URL) ([]string, error) {
	sess, err := session.NewSession(&aws.Config{})
	if err != nil {
		return nil, fmt.Errorf("transfer: s3 session: %w", err)
	}
	client := s3.New(sess)
	prefix := strings.TrimPrefix(u.Path, "/")
	var names []string
	err = client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(u.Host),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			names = append(names, fmt.Sprintf("s3://%s/%s", u.Host, aws.StringValue(obj.Key)))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: s3 list %s: %w", u.String(), err)
	}
	return names, nil
}

func (l *Local) fetchGCS(ctx context.Context, u *url.URL) (string, error) {
	dest, err := l.destPath(u.String())
	if err != nil {
		return "", err
	}
	cli, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("transfer: gcs client: %w", err)
	}
	defer cli.Close()
	object := strings.TrimPrefix(u.Path, "/")
	r, err := cli.Bucket(u.Host).Object(object).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("transfer: gcs read %s: %w", u.String(), err)
	}
	defer r.Close()
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return dest, nil
}

func (l *Local) listGCS(ctx context.Context, u *url.URL) ([]string, error) {
	cli, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("transfer: gcs client: %w", err)
	}
	defer cli.Close()
	prefix := strings.TrimPrefix(u.Path, "/")
	it := cli.Bucket(u.Host).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transfer: gcs list %s: %w", u.String(), err)
		}
		names = append(names, fmt.Sprintf("gs://%s/%s", u.Host, attrs.Name))
	}
	return names, nil
}

func (l *Local) fetchAzure(ctx context.Context, u *url.URL) (string, error) {
	dest, err := l.destPath(u.String())
	if err != nil {
		return "", err
	}
	account := u.Host
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("transfer: az URI %s missing container/blob path", u.String())
	}
	container, blob := parts[0], parts[1]

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return "", fmt.Errorf("transfer: azure credential: %w", err)
	}
	client, err := azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", account), cred, nil)
	if err != nil {
		return "", fmt.Errorf("transfer: azure client: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := client.DownloadFile(ctx, container, blob, f, nil); err != nil {
		return "", fmt.Errorf("transfer: azure download %s: %w", u.String(), err)
	}
	return dest, nil
}

func (l *Local) listAzure(ctx context.Context, u *url.URL) ([]string, error) {
	account := u.Host
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	container := parts[0]
	prefix := ""
	if len(parts) == 2 {
		prefix = parts[1]
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("transfer: azure credential: %w", err)
	}
	client, err := azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", account), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("transfer: azure client: %w", err)
	}
	var names []string
	pager := client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("transfer: azure list %s: %w", u.String(), err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, fmt.Sprintf("az://%s/%s/%s", account, container, *item.Name))
			}
		}
	}
	return names, nil
}
