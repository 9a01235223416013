package sf_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

func TestContinuationToken(t *testing.T) {
	t.Parallel()

	assert.True(t, sf.EmptyContinuationToken.IsEmpty())
	assert.False(t, sf.EmptyContinuationToken.HasNext())
	assert.Equal(t, sf.EmptyContinuationToken, sf.ContinuationToken{})

	token := sf.NewContinuationToken("fabric:/app+3")
	assert.True(t, token.HasNext())
	assert.Equal(t, "fabric:/app+3", token.String())
}

func TestPagedList_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantToken string
		wantItems int
		wantErr   bool
	}{
		{
			name:      "last page",
			body:      `{"ContinuationToken":"","Items":[{"ID":"1"},{"ID":"2"}]}`,
			wantItems: 2,
		},
		{
			name:      "more pages",
			body:      `{"ContinuationToken":"node_3","Items":[{"ID":"1"}]}`,
			wantToken: "node_3",
			wantItems: 1,
		},
		{
			name: "null token",
			body: `{"ContinuationToken":null,"Items":[]}`,
		},
		{
			name:    "missing token",
			body:    `{"Items":[{"ID":"1"}]}`,
			wantErr: true,
		},
		{
			name:    "unexpected shape",
			body:    `{"Unexpected":"shape"}`,
			wantErr: true,
		},
		{
			name:    "array body",
			body:    `[{"ID":"1"}]`,
			wantErr: true,
		},
		{
			name:    "numeric token",
			body:    `{"ContinuationToken":42,"Items":[]}`,
			wantErr: true,
		},
		{
			name:    "object token",
			body:    `{"ContinuationToken":{"next":"x"},"Items":[]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var list sf.PagedList[TestResource]

			err := json.Unmarshal([]byte(tt.body), &list)
			if tt.wantErr {
				require.ErrorIs(t, err, sf.ErrMalformedPage)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, list.ContinuationToken.String())
			assert.Len(t, list.Items, tt.wantItems)
		})
	}
}

func TestContinuationToken_Marshal(t *testing.T) {
	t.Parallel()

	list := sf.PagedList[TestResource]{
		ContinuationToken: sf.NewContinuationToken("abc"),
		Items:             []TestResource{{ID: "1"}},
	}

	data, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ContinuationToken":"abc","Items":[{"ID":"1","Name":""}]}`, string(data))

	out, err := yaml.Marshal(list)
	require.NoError(t, err)
	assert.Contains(t, string(out), "continuation_token: abc")
}

func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	params := sf.NewQueryParams().
		WithAPIVersion("6.3").
		WithContinuationToken(sf.NewContinuationToken("next-token")).
		WithMaxResults(50).
		WithTimeout(60).
		WithFilter("NodeStatusFilter", "up").
		WithFilter("Ignored", "")

	values := params.ToValues()

	assert.Equal(t, "6.3", values.Get("api-version"))
	assert.Equal(t, "next-token", values.Get("ContinuationToken"))
	assert.Equal(t, "50", values.Get("MaxResults"))
	assert.Equal(t, "60", values.Get("timeout"))
	assert.Equal(t, "up", values.Get("NodeStatusFilter"))
	assert.False(t, values.Has("Ignored"))
}

func TestQueryParams_EmptyTokenOmitted(t *testing.T) {
	t.Parallel()

	values := sf.NewQueryParams().WithAPIVersion("6.0").ToValues()

	assert.False(t, values.Has("ContinuationToken"))
	assert.False(t, values.Has("MaxResults"))
	assert.False(t, values.Has("timeout"))
}

func TestQueryParams_Clone(t *testing.T) {
	t.Parallel()

	original := sf.NewQueryParams().WithFilter("a", "1")
	clone := original.Clone().WithFilter("b", "2").WithContinuationToken(sf.NewContinuationToken("x"))

	assert.Len(t, original.Filters, 1)
	assert.Len(t, clone.Filters, 2)
	assert.True(t, original.ContinuationToken.IsEmpty())
}

func TestListOptions_QueryParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     sf.ListOptions
		expected map[string]string
	}{
		{
			name: "applications",
			opts: &sf.ApplicationListOptions{
				PageOptions:                  sf.PageOptions{MaxResults: 10},
				ApplicationTypeName:          "VotingType",
				ApplicationDefinitionKind:    1,
				ExcludeApplicationParameters: true,
			},
			expected: map[string]string{
				"api-version":                     "6.1",
				"MaxResults":                      "10",
				"ApplicationTypeName":             "VotingType",
				"ApplicationDefinitionKindFilter": "1",
				"ExcludeApplicationParameters":    "true",
			},
		},
		{
			name:     "nil applications",
			opts:     (*sf.ApplicationListOptions)(nil),
			expected: map[string]string{"api-version": "6.1"},
		},
		{
			name:     "nodes",
			opts:     &sf.NodeListOptions{NodeStatusFilter: "down"},
			expected: map[string]string{"api-version": "6.3", "NodeStatusFilter": "down"},
		},
		{
			name:     "services",
			opts:     &sf.ServiceListOptions{ApplicationID: "Voting", ServiceTypeName: "WebType"},
			expected: map[string]string{"api-version": "6.0", "ServiceTypeName": "WebType"},
		},
		{
			name:     "backup entities",
			opts:     &sf.BackupEntityListOptions{PolicyName: "daily", PageOptions: sf.PageOptions{Timeout: 30}},
			expected: map[string]string{"api-version": "6.4", "timeout": "30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values := tt.opts.QueryParams().ToValues()

			assert.Len(t, values, len(tt.expected))

			for key, value := range tt.expected {
				assert.Equal(t, value, values.Get(key), key)
			}
		})
	}
}

func TestReplicaInfo_Identity(t *testing.T) {
	t.Parallel()

	stateful := sf.ReplicaInfo{ReplicaID: "131", InstanceID: "9"}
	stateless := sf.ReplicaInfo{InstanceID: "9"}

	assert.Equal(t, "131", stateful.Identity())
	assert.Equal(t, "9", stateless.Identity())
}

func TestBackupEntity_Target(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "p-1", (&sf.BackupEntity{ApplicationName: "fabric:/a", PartitionID: "p-1"}).Target())
	assert.Equal(t, "fabric:/a/s", (&sf.BackupEntity{ApplicationName: "fabric:/a", ServiceName: "fabric:/a/s"}).Target())
	assert.Equal(t, "fabric:/a", (&sf.BackupEntity{ApplicationName: "fabric:/a"}).Target())
}
