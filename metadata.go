// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Meta is the unified document metadata model (info dictionary fields).
type Meta struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	ModDate      string `json:"modDate,omitempty"`
	PageCount    int    `json:"pageCount"`
}

// readMeta pulls the info dictionary fields off a loaded document graph.
// Missing or malformed entries read as empty strings.
func readMeta(pctx *model.Context) Meta {
	m := Meta{PageCount: pctx.PageCount}

	if pctx.Info == nil {
		return m
	}
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil || d == nil {
		return m
	}

	get := func(key string) string {
		obj, found := d.Find(key)
		if !found {
			return ""
		}
		obj, err := pctx.Dereference(obj)
		if err != nil {
			return ""
		}
		switch v := obj.(type) {
		case types.StringLiteral:
			return v.Value()
		case types.HexLiteral:
			return v.Value()
		}
		return ""
	}

	m.Title = get("Title")
	m.Author = get("Author")
	m.Subject = get("Subject")
	m.Keywords = get("Keywords")
	m.Creator = get("Creator")
	m.Producer = get("Producer")
	m.CreationDate = get("CreationDate")
	m.ModDate = get("ModDate")
	return m
}

// Metadata writes the document's metadata as JSON to w.
func (t *transformer) Metadata(ctx context.Context, input []byte, w io.Writer) error {
	if err := t.acquireSlot(ctx); err != nil {
		return err
	}
	defer t.sem.Release(1)

	pctx, err := loadContext(ctx, input, permissiveConf(), loadTimeout(t.cfg.LoadTimeoutFloor, len(input)))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(readMeta(pctx))
}
