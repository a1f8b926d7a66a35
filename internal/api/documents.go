package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ListDocuments returns the documents visible to the caller, in server order.
// An empty query lists everything; matching is done by the server.
func (c *Client) ListDocuments(ctx context.Context, query string) ([]Document, error) {
	endpoint := c.baseURL + "/documents/"
	if q := strings.TrimSpace(query); q != "" {
		endpoint += "?q=" + url.QueryEscape(q)
	}
	var docs []Document
	if err := c.do(ctx, request{method: http.MethodGet, url: endpoint, withAuth: true}, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// UploadDocument sends the file at path as multipart form data. When title
// is empty the server picks one, usually the file name.
func (c *Client) UploadDocument(ctx context.Context, path, title string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	var doc Document
	err = c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.baseURL + "/documents/",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		withAuth:    true,
	}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument stores text content under title without a file transfer.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*Document, error) {
	payload, err := json.Marshal(createDocumentRequest{Title: title, ParseContent: content})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var doc Document
	err = c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.baseURL + "/documents/",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		withAuth:    true,
	}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document by id.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/documents/" + url.PathEscape(id) + "/"
	return c.do(ctx, request{method: http.MethodDelete, url: endpoint, withAuth: true}, nil)
}

// QueryDocument asks a question against one document. An empty result is a
// valid answer meaning nothing relevant was found.
func (c *Client) QueryDocument(ctx context.Context, documentID, question string) ([]AnswerChunk, error) {
	payload, err := json.Marshal(queryRequest{DocumentID: documentID, Query: question})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var out queryResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.baseURL + "/query/",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		withAuth:    true,
	}, &out)
	if err != nil {
		return nil, err
	}
	chunks := make([]AnswerChunk, 0, len(out.Results))
	for _, r := range out.Results {
		chunks = append(chunks, AnswerChunk{
			Content:          r.Content,
			SourceDocumentID: r.Metadata.DocumentID,
			SourceTitle:      r.Metadata.Title,
		})
	}
	return chunks, nil
}
