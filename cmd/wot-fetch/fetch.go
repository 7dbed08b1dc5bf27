package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/wot-td/wot-go/pkg/httpbinding"
	"github.com/wot-td/wot-go/pkg/wire"
)

// maxRestarts bounds how often a transfer restarts after the document
// changed underneath it.
const maxRestarts = 3

var (
	errChanged = errors.New("document changed during transfer")
	errTooMany = errors.New("document keeps changing, giving up")
)

// Caller sends one request and waits for its response.
type Caller interface {
	Call(ctx context.Context, req *wire.Request) (*wire.Response, error)
}

// Document is a fetched Thing Description.
type Document struct {
	Data   []byte
	ETag   []byte
	Blocks int
}

// fetchFramed retrieves the whole document over the framed binding in
// blocks of 16 << szx bytes.
func fetchFramed(ctx context.Context, c Caller, szx uint8) (*Document, error) {
	for attempt := 0; attempt <= maxRestarts; attempt++ {
		doc, err := fetchFramedOnce(ctx, c, szx)
		if errors.Is(err, errChanged) {
			continue
		}
		return doc, err
	}
	return nil, errTooMany
}

func fetchFramedOnce(ctx context.Context, c Caller, szx uint8) (*Document, error) {
	doc := &Document{}
	var buf bytes.Buffer
	var size uint64
	for num := uint32(0); ; num++ {
		resp, err := c.Call(ctx, &wire.Request{
			Operation: wire.OpGetDescription,
			Block:     &wire.Block{Num: num, SZX: szx},
			ETag:      doc.ETag,
		})
		if err != nil {
			return nil, err
		}
		switch {
		case resp.Status == wire.StatusPreconditionFailed:
			return nil, errChanged
		case !resp.IsSuccess():
			return nil, fmt.Errorf("block %d: %s: %s", num, resp.Status, resp.ErrorMessage())
		case resp.Block == nil:
			return nil, fmt.Errorf("block %d: response carries no block", num)
		}
		if doc.ETag != nil && !bytes.Equal(doc.ETag, resp.ETag) {
			return nil, errChanged
		}
		doc.ETag = resp.ETag
		size = resp.Size

		data, err := resp.BlockData()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		doc.Blocks++
		if !resp.Block.More {
			break
		}
	}
	if uint64(buf.Len()) != size {
		return nil, fmt.Errorf("received %d bytes, document has %d", buf.Len(), size)
	}
	doc.Data = buf.Bytes()
	return doc, nil
}

// fetchHTTP retrieves the document from url with Range requests of
// blockSize bytes, pinning the transfer to the first ETag with If-Range.
func fetchHTTP(ctx context.Context, client *http.Client, url string, blockSize int64) (*Document, error) {
	for attempt := 0; attempt <= maxRestarts; attempt++ {
		doc, err := fetchHTTPOnce(ctx, client, url, blockSize)
		if errors.Is(err, errChanged) {
			continue
		}
		return doc, err
	}
	return nil, errTooMany
}

func fetchHTTPOnce(ctx context.Context, client *http.Client, url string, blockSize int64) (*Document, error) {
	doc := &Document{}
	var buf bytes.Buffer
	var etag string
	total := int64(-1)
	for offset := int64(0); total < 0 || offset < total; offset += blockSize {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+blockSize-1))
		if etag != "" {
			req.Header.Set("If-Range", etag)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			// Either ranges are unsupported or the ETag moved on.
			if etag != "" {
				return nil, errChanged
			}
			doc.Data = data
			doc.Blocks = 1
			doc.ETag = []byte(resp.Header.Get("ETag"))
			return doc, nil
		case http.StatusPartialContent:
		case http.StatusPreconditionFailed:
			return nil, errChanged
		default:
			return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
		}

		var first, last, n int64
		if _, err := fmt.Sscanf(resp.Header.Get("Content-Range"), "bytes %d-%d/%d", &first, &last, &n); err != nil {
			return nil, fmt.Errorf("bad Content-Range %q: %w", resp.Header.Get("Content-Range"), err)
		}
		if first != offset || int64(len(data)) != last-first+1 {
			return nil, fmt.Errorf("unexpected range %d-%d for offset %d", first, last, offset)
		}
		if etag == "" {
			etag = resp.Header.Get("ETag")
		} else if resp.Header.Get("ETag") != etag {
			return nil, errChanged
		}
		total = n
		buf.Write(data)
		doc.Blocks++
	}
	doc.Data = buf.Bytes()
	doc.ETag = []byte(etag)
	return doc, nil
}

// describeURL builds the well-known URL of a Thing at host:port.
func describeURL(scheme, host string, port uint16, path string) string {
	if scheme == "" {
		scheme = "http"
	}
	if path == "" {
		path = httpbinding.WellKnownPath
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(int(port))) + path
}
