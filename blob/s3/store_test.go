// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/blob/blobtest"
)

// fakeS3 serves just enough of the S3 REST protocol, path style, for
// one bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func response(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     header,
	}
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2015-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return response(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}}), nil
	}
	header := func(k string) http.Header {
		return http.Header{
			"Content-Length": {fmt.Sprint(len(f.objects[k]))},
			"Content-Type":   {f.types[k]},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		}
	}
	switch req.Method {
	case http.MethodHead:
		if _, ok := f.objects[key]; ok {
			return response(http.StatusOK, nil, header(key)), nil
		}
		return response(http.StatusNotFound, nil, nil), nil
	case http.MethodGet:
		if data, ok := f.objects[key]; ok {
			return response(http.StatusOK, data, header(key)), nil
		}
		return response(http.StatusNotFound, []byte(`<Error><Code>NoSuchKey</Code></Error>`), nil), nil
	case http.MethodPut:
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		f.objects[key] = data
		f.types[key] = req.Header.Get("Content-Type")
		return response(http.StatusOK, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return response(http.StatusNoContent, nil, nil), nil
	}
	return response(http.StatusNotImplemented, nil, nil), nil
}

func TestStore(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
	s, err := New(context.Background(), Config{
		Bucket:          "catalog",
		Endpoint:        "https://s3.test.local",
		Prefix:          "geo",
		PathStyle:       true,
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		HTTPClient:      &http.Client{Transport: fake},
	})
	require.NoError(t, err)
	blobtest.Run(t, s)
}
