// Package render turns issuance rows into certificate documents: an HTML
// rendering, its content checksum, and optional zip packaging. The checksum it
// produces is what the registry later uses as primary key.
package render

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"

	"golang.org/x/sync/errgroup"

	"certledger/internal/importer"
)

// Document is one rendered certificate with its content checksum.
type Document struct {
	Row      importer.Row
	HTML     []byte
	Checksum string
	Filename string
}

// Renderer renders certificate documents from the built-in template.
type Renderer struct {
	tmpl *template.Template
}

// New parses the certificate template once per renderer.
func New() (*Renderer, error) {
	tmpl, err := template.New("certificate").Parse(certificateTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse certificate template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type templateData struct {
	FirstName  string
	LastName   string
	CertName   string
	ValidUntil string
	Issuer     string
}

// Render produces one certificate document for row, signed by issuerName.
func (r *Renderer) Render(row importer.Row, issuerName string) (Document, error) {
	var buf bytes.Buffer
	data := templateData{
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		CertName:   row.CertName,
		ValidUntil: row.ExpirationDate.Format("2006-01-02"),
		Issuer:     issuerName,
	}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("render certificate for %s %s: %w", row.FirstName, row.LastName, err)
	}
	html := buf.Bytes()
	return Document{
		Row:      row,
		HTML:     html,
		Checksum: Checksum(html),
		Filename: fmt.Sprintf("certificate_%s_%s.html", row.FirstName, row.LastName),
	}, nil
}

// RenderAll renders every row concurrently, preserving input order in the
// result. One failed rendering fails the whole call; registration of the
// documents has not started at that point, so nothing is half-done.
func (r *Renderer) RenderAll(ctx context.Context, rows []importer.Row, issuerName string) ([]Document, error) {
	docs := make([]Document, len(rows))
	g, _ := errgroup.WithContext(ctx)
	for i, row := range rows {
		g.Go(func() error {
			doc, err := r.Render(row, issuerName)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Checksum returns the MD5 hex digest of the document bytes. MD5 is kept for
// wire compatibility with previously issued checksums; it identifies content,
// it does not protect it.
func Checksum(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Zip packages documents, plus any extra named payloads, into a zip archive.
func Zip(docs []Document, extras map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, doc := range docs {
		f, err := w.Create(doc.Filename)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", doc.Filename, err)
		}
		if _, err := f.Write(doc.HTML); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", doc.Filename, err)
		}
	}
	for name, payload := range extras {
		f, err := w.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := f.Write(payload); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
