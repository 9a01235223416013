package sfclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
	"github.com/fivetwenty-io/sfctl/pkg/sfclient"
)

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "cluster.westus.cloudapp.azure.com:19080", want: "https://cluster.westus.cloudapp.azure.com:19080"},
		{in: "https://cluster:19080/", want: "https://cluster:19080"},
		{in: "http://localhost:19080", want: "http://localhost:19080"},
		{in: "  https://cluster:19080//  ", want: "https://cluster:19080"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sfclient.NormalizeEndpoint(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := sfclient.New(context.Background(), nil)
	require.ErrorIs(t, err, sf.ErrConfigRequired)

	_, err = sfclient.New(context.Background(), &sf.Config{})
	require.ErrorIs(t, err, sf.ErrEndpointRequired)

	config := &sf.Config{Endpoint: "cluster:19080"}
	_, err = sfclient.New(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "cluster:19080", config.Endpoint)
}

func TestNewWithCertificate_MissingFiles(t *testing.T) {
	t.Parallel()

	_, err := sfclient.NewWithCertificate(context.Background(), "https://cluster:19080", "/nonexistent/cert.pem", "/nonexistent/key.pem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading client certificate")
}

func TestNewWithToken_DrainsNodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer token-1", request.Header.Get("Authorization"))

		if request.URL.Query().Get("ContinuationToken") == "" {
			_ = json.NewEncoder(writer).Encode(sf.PagedList[sf.NodeInfo]{
				ContinuationToken: sf.NewContinuationToken("_Node_1"),
				Items:             []sf.NodeInfo{{Name: "_Node_0"}, {Name: "_Node_1"}},
			})

			return
		}

		_ = json.NewEncoder(writer).Encode(sf.PagedList[sf.NodeInfo]{
			Items: []sf.NodeInfo{{Name: "_Node_2"}},
		})
	}))
	defer server.Close()

	cli, err := sfclient.NewWithToken(context.Background(), server.URL, "token-1")
	require.NoError(t, err)

	nodes, err := sf.FetchAllPages(context.Background(), cli.Nodes().Fetcher(nil))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "_Node_2", nodes[2].Name)
}
