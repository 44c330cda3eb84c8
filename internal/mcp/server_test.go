package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for MCPServer:
// - NewMCPServer requires a store
// - ServeIO answers initialize and tool calls over a line-delimited stream
// - ServeIO returns cleanly when the context is cancelled

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func TestNewMCPServer_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := NewMCPServer(nil, "dev")
	assert.Error(t, err)

	s, err := NewMCPServer(NewStaticStore(testModel(), nil), "dev")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestMCPServer_ServeIO(t *testing.T) {
	t.Parallel()

	s, err := NewMCPServer(NewStaticStore(testModel(), nil), "1.2.3")
	require.NoError(t, err)

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.ServeIO(ctx, inR, outW) }()

	lines := make(chan []byte, 4)
	go func() {
		sc := bufio.NewScanner(outR)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			lines <- append([]byte(nil), sc.Bytes()...)
		}
	}()

	send := func(req string) rpcResponse {
		t.Helper()
		_, err := io.WriteString(inW, req+"\n")
		require.NoError(t, err)
		select {
		case line := <-lines:
			var resp rpcResponse
			require.NoError(t, json.Unmarshal(line, &resp))
			require.Nil(t, resp.Error)
			return resp
		case <-time.After(3 * time.Second):
			t.Fatal("no response from server")
			return rpcResponse{}
		}
	}

	resp := send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)
	assert.Equal(t, 1, resp.ID)
	var init struct {
		ServerInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
		Instructions string `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &init))
	assert.Equal(t, ServerName, init.ServerInfo.Name)
	assert.Equal(t, "1.2.3", init.ServerInfo.Version)
	assert.Contains(t, init.Instructions, "specmodel_get_type")

	resp = send(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"specmodel_list_root_classes","arguments":{}}}`)
	assert.Equal(t, 2, resp.ID)
	assert.Contains(t, string(resp.Result), "ARObject")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("ServeIO did not return after cancel")
	}
	_ = inW.Close()
	_ = outW.Close()
}
