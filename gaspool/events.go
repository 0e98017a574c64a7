// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/gorilla/rpc/v2/json2"
)

// GetEventsMethod is the fullnode JSON-RPC method used by GetEvents.
const GetEventsMethod = "sui_getEvents"

// GetEvents fetches the events emitted by txDigest from the Sui fullnode and
// returns the JSON-RPC response body untouched. The gas pool token is not sent.
func (c *Client) GetEvents(ctx context.Context, txDigest string) (raw json.RawMessage, err error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	ctx, finish := c.startOperation(ctx, MethodGetEvents, AttrTxDigest.String(txDigest))
	defer func() { finish(err) }()

	envelope, err := json2.EncodeClientRequest(GetEventsMethod, []string{txDigest})
	if err != nil {
		return nil, errors.WrapMarshalFailed(err)
	}

	body, err := c.do(ctx, http.MethodPost, c.suiRPCURL, envelope, false)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}
