// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
)

// StatusError - non-success HTTP response
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status: %d %q on: %q", e.Status, e.Body, e.URL)
}

// FetchJSON - fetch a JSON response from an HTTP GET request and
// decode it
func FetchJSON(ctx context.Context, client *http.Client, url string, reply interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if nil != err {
		return err
	}
	return doJSON(client, request, reply)
}

// PostJSON - encode a request as JSON, POST it and decode the JSON
// response, reply may be nil to discard the body
func PostJSON(ctx context.Context, client *http.Client, url string, args interface{}, reply interface{}) error {
	body, err := json.Marshal(args)
	if nil != err {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if nil != err {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	return doJSON(client, request, reply)
}

func doJSON(client *http.Client, request *http.Request, reply interface{}) error {
	response, err := client.Do(request)
	if nil != err {
		return err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(response.Body, maximumResponseSize))
	if nil != err {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &StatusError{
			URL:    request.URL.String(),
			Status: response.StatusCode,
			Body:   string(body),
		}
	}
	if nil == reply || 0 == len(body) {
		return nil
	}
	return json.Unmarshal(body, reply)
}

// largest JSON response accepted
const maximumResponseSize = 16 * 1024 * 1024
