// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package s3 - archive client storing bundles as S3 objects
//
// objects are content addressed: the id is the SHA3-256 of the data
// and an existing object is never overwritten
package s3

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/archivenode/archive"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/logger"
)

const maximumDownload = 1 << 30

// API - the object operations used by the client
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client - S3 backend of archive.Client
type Client struct {
	log    *logger.L
	api    API
	bucket string
	prefix string
}

// Configuration - bucket access
type Configuration struct {
	Region   string
	Bucket   string
	Prefix   string
	Endpoint string // optional, for S3 compatible stores
}

// Dial - create a client from the default AWS credential chain
func Dial(ctx context.Context, conf Configuration) (*Client, error) {
	if "" == conf.Bucket {
		return nil, fmt.Errorf("%w: empty bucket", fault.ErrConfigurationInvalid)
	}

	options := []func(*config.LoadOptions) error{}
	if "" != conf.Region {
		options = append(options, config.WithRegion(conf.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if nil != err {
		return nil, err
	}

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if "" != conf.Endpoint {
			o.EndpointResolver = s3.EndpointResolverFunc(func(region string, options s3.EndpointResolverOptions) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               conf.Endpoint,
					SigningRegion:     region,
					HostnameImmutable: true,
				}, nil
			})
			o.UsePathStyle = true
		}
	})

	return New(api, conf.Bucket, conf.Prefix), nil
}

// New - create a client over an existing API
func New(api API, bucket string, prefix string) *Client {
	return &Client{
		log:    logger.New("archive"),
		api:    api,
		bucket: bucket,
		prefix: prefix,
	}
}

// ObjectID - content address of data
func ObjectID(data []byte) string {
	digest := sha3.Sum256(data)
	return hex.EncodeToString(digest[:])
}

func (c *Client) key(id string) string {
	return c.prefix + id
}

// Upload - store data unless an object with the same content exists
func (c *Client) Upload(ctx context.Context, data []byte, tags archive.Tags) (string, error) {
	id := ObjectID(data)

	exists, err := c.exists(ctx, id)
	if nil != err {
		return "", err
	}
	if exists {
		c.log.Infof("object: %s already stored", id)
		return id, nil
	}

	contentType, _ := tags.Get(archive.TagContentType)
	metadata := make(map[string]string, len(tags))
	for _, t := range tags {
		if archive.TagContentType == t.Name {
			continue
		}
		metadata[strings.ToLower(t.Name)] = t.Value
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(c.key(id)),
		Body:          bytes.NewReader(data),
		ContentLength: int64(len(data)),
		ContentType:   aws.String(contentType),
		Metadata:      metadata,
	})
	if nil != err {
		return "", err
	}

	c.log.Infof("uploaded: %s  bytes: %d", id, len(data))
	return id, nil
}

// GetStatus - an object is confirmed once it can be read back
func (c *Client) GetStatus(ctx context.Context, id string) (archive.Status, error) {
	exists, err := c.exists(ctx, id)
	if nil != err {
		return archive.Status{}, err
	}
	return archive.Status{Confirmed: exists}, nil
}

// Download - object contents
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(id)),
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: object: %s", fault.ErrNotFound, id)
	}
	if nil != err {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(io.LimitReader(out.Body, maximumDownload))
}

func (c *Client) exists(ctx context.Context, id string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(id)),
	})
	if isNotFound(err) {
		return false, nil
	}
	if nil != err {
		return false, err
	}
	return true, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey":
		return true
	default:
		return false
	}
}
