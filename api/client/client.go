// Package client builds NodeAPI handles over a node's JSON-RPC endpoint.
package client

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/consensus-shipyard/ipc-agent/api"
)

// NewNodeRPC creates a NodeAPI client talking to a node's JSON-RPC
// endpoint. The auth token, when present, is sent as a bearer token;
// write operations (mpool push, wallet) are rejected by the node
// without it.
func NewNodeRPC(ctx context.Context, addr string, authToken string) (api.NodeAPI, jsonrpc.ClientCloser, error) {
	var res api.NodeStruct

	requestHeader := http.Header{}
	if authToken != "" {
		requestHeader.Add("Authorization", "Bearer "+authToken)
	}

	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Filecoin",
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
	)
	return &res, closer, err
}
