// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package gcs - archive client storing bundles in a Google Cloud
// Storage bucket
//
// object names are the SHA3-256 of the data, objects are created with
// a does-not-exist precondition so nothing is ever overwritten
package gcs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/crypto/sha3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bitmark-inc/archivenode/archive"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/logger"
)

const maximumDownload = 1 << 30

// ErrObjectExists - create found an object with the same name
var ErrObjectExists = fault.ExistsError("object already exists")

// Bucket - the object operations used by the client
type Bucket interface {
	Create(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error
	Exists(ctx context.Context, name string) (bool, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// Client - GCS backend of archive.Client
type Client struct {
	log    *logger.L
	bucket Bucket
	prefix string
}

// Configuration - bucket access
type Configuration struct {
	Bucket          string
	Prefix          string
	CredentialsFile string // blank for application default credentials
	Endpoint        string // optional, for emulators
}

// Dial - connect to a bucket
func Dial(ctx context.Context, conf Configuration) (*Client, error) {
	if "" == conf.Bucket {
		return nil, fmt.Errorf("%w: empty bucket", fault.ErrConfigurationInvalid)
	}

	options := []option.ClientOption{}
	if "" != conf.CredentialsFile {
		options = append(options, option.WithCredentialsFile(conf.CredentialsFile))
	}
	if "" != conf.Endpoint {
		options = append(options, option.WithEndpoint(conf.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, options...)
	if nil != err {
		return nil, err
	}
	return New(&bucketHandle{handle: client.Bucket(conf.Bucket)}, conf.Prefix), nil
}

// New - create a client over a bucket
func New(bucket Bucket, prefix string) *Client {
	return &Client{
		log:    logger.New("archive"),
		bucket: bucket,
		prefix: prefix,
	}
}

// ObjectID - content address of data
func ObjectID(data []byte) string {
	digest := sha3.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// Upload - create the object, an existing copy counts as success
func (c *Client) Upload(ctx context.Context, data []byte, tags archive.Tags) (string, error) {
	id := ObjectID(data)

	contentType, _ := tags.Get(archive.TagContentType)
	metadata := make(map[string]string, len(tags))
	for _, t := range tags {
		if archive.TagContentType != t.Name {
			metadata[strings.ToLower(t.Name)] = t.Value
		}
	}

	err := c.bucket.Create(ctx, c.prefix+id, data, contentType, metadata)
	if errors.Is(err, ErrObjectExists) {
		c.log.Infof("object: %s already stored", id)
		return id, nil
	}
	if nil != err {
		return "", err
	}

	c.log.Infof("uploaded: %s  bytes: %d", id, len(data))
	return id, nil
}

// GetStatus - an object is confirmed once it exists
func (c *Client) GetStatus(ctx context.Context, id string) (archive.Status, error) {
	exists, err := c.bucket.Exists(ctx, c.prefix+id)
	if nil != err {
		return archive.Status{}, err
	}
	return archive.Status{Confirmed: exists}, nil
}

// Download - object contents
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	return c.bucket.Read(ctx, c.prefix+id)
}

// Bucket over the storage client
type bucketHandle struct {
	handle *storage.BucketHandle
}

func (b *bucketHandle) Create(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error {
	w := b.handle.Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := w.Write(data); nil != err {
		_ = w.Close()
		return err
	}

	err := w.Close()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && http.StatusPreconditionFailed == apiErr.Code {
		return ErrObjectExists
	}
	return err
}

func (b *bucketHandle) Exists(ctx context.Context, name string) (bool, error) {
	_, err := b.handle.Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if nil != err {
		return false, err
	}
	return true, nil
}

func (b *bucketHandle) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.handle.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: object: %s", fault.ErrNotFound, name)
	}
	if nil != err {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(io.LimitReader(r, maximumDownload))
}
