// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package archive - write-once blob store holding uploaded bundles
//
// backends:
//
//   archive/gateway - signed HTTP gateway with a funded wallet
//   archive/s3      - content addressed objects in an S3 bucket
//   archive/gcs     - content addressed objects in a GCS bucket
package archive

import (
	"context"
	"strconv"
)

// Tag - one name/value label attached to a blob
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Tags - ordered list of labels
type Tags []Tag

// Get - value of the first tag with the name
func (tags Tags) Get(name string) (string, bool) {
	for _, t := range tags {
		if name == t.Name {
			return t.Value, true
		}
	}
	return "", false
}

// Status - retrievability of a blob
type Status struct {
	Confirmed bool
}

// Client - access to the blob store
type Client interface {
	// store data and return its id
	Upload(ctx context.Context, data []byte, tags Tags) (string, error)

	// blobs that are not yet committed are not confirmed, this is
	// not an error
	GetStatus(ctx context.Context, id string) (Status, error)

	Download(ctx context.Context, id string) ([]byte, error)
}

// tag names
const (
	TagApplication = "Application"
	TagPool        = "Pool"
	TagUploader    = "Uploader"
	TagFromHeight  = "FromHeight"
	TagToHeight    = "ToHeight"
	TagContentType = "Content-Type"

	// name of the core version tag
	TagCore = "archivenode"

	Application = "archivenode"
	ContentType = "application/gzip"
)

// TagInfo - values describing an uploaded bundle
type TagInfo struct {
	Pool           string
	CoreVersion    string
	Runtime        string
	RuntimeVersion string
	Uploader       string
	FromHeight     uint64
	ToHeight       uint64
}

// NewTags - the standard tag set for a bundle upload
//
// the runtime is tagged by its own name so bundles of different
// runtimes can be told apart
func NewTags(info TagInfo) Tags {
	return Tags{
		{Name: TagApplication, Value: Application},
		{Name: TagPool, Value: info.Pool},
		{Name: TagCore, Value: info.CoreVersion},
		{Name: info.Runtime, Value: info.RuntimeVersion},
		{Name: TagUploader, Value: info.Uploader},
		{Name: TagFromHeight, Value: strconv.FormatUint(info.FromHeight, 10)},
		{Name: TagToHeight, Value: strconv.FormatUint(info.ToHeight, 10)},
		{Name: TagContentType, Value: ContentType},
	}
}
