package envelope

import (
	"encoding/json"
	"testing"

	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type getPropertiesBody struct {
	Objects    []ObjectRef `json:"objects"`
	Attributes []string    `json:"attributes"`
}

func TestWrapMaterializesEmptyHeader(t *testing.T) {
	raw, err := Wrap(&getPropertiesBody{Objects: []ObjectRef{{UID: "X1"}}, Attributes: []string{"object_name"}}, nil, nil).Marshal()
	require.NoError(t, err)

	doc, err := jsonvalue.Parse(raw)
	require.NoError(t, err)
	for _, key := range []string{"state", "policy"} {
		val, ok := doc.Lookup("header", key)
		require.True(t, ok, "header.%s must be present", key)
		assert.Equal(t, jsonvalue.ObjectKind, val.Kind())
		assert.Equal(t, 0, val.Len())
	}
	uid, ok := doc.Lookup("body", "objects")
	require.True(t, ok)
	assert.Equal(t, 1, uid.Len())
}

func TestHeaderMarshalOnZeroValue(t *testing.T) {
	raw, err := json.Marshal(&Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":{"state":{},"policy":{}},"body":null}`, string(raw))

	raw, err = (&Request{}).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":{"state":{},"policy":{}},"body":{}}`, string(raw))
}

func TestWrapCopiesOverrides(t *testing.T) {
	state := map[string]jsonvalue.Value{"locale": jsonvalue.String("en_US")}
	request := Wrap(nil, state, nil)
	state["locale"] = jsonvalue.String("de_DE")

	locale, _ := request.Header.State["locale"].AsString()
	assert.Equal(t, "en_US", locale)
}

func TestStateOptions(t *testing.T) {
	enabled := true
	state := (&StateOptions{Locale: "en_US", FormatProperties: &enabled}).Build()
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"locale":"en_US","formatProperties":true}`, string(raw))

	var nilOptions *StateOptions
	assert.Empty(t, nilOptions.Build())
}

func TestPropertyPolicy(t *testing.T) {
	policy := NewPropertyPolicy().
		WithType("ItemRevision", "object_name", "item_revision_id").
		WithType("Folder", "contents").
		WithType("ItemRevision", "object_desc").
		Build()
	raw, err := json.Marshal(policy)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"useRefCount": false,
		"types": [
			{"name": "ItemRevision", "properties": [{"name": "object_name"}, {"name": "item_revision_id"}, {"name": "object_desc"}]},
			{"name": "Folder", "properties": [{"name": "contents"}]}
		]
	}`, string(raw))

	assert.Empty(t, NewPropertyPolicy().Build())
}

func TestPeekQName(t *testing.T) {
	peek, err := PeekQName([]byte(`{".QName": "http://teamcenter.com/Schemas/Core/2011-06/Session.LoginResponse", "serverInfo": {}}`))
	require.NoError(t, err)
	assert.True(t, peek.HasMarker("LoginResponse"))
	assert.False(t, peek.IsException())

	peek, err = PeekQName([]byte(`{".QName": "http://teamcenter.com/Schemas/Soa/2006-03/Exceptions.InvalidCredentialsException", "code": 1031, "level": 3, "message": "Invalid user ID or password."}`))
	require.NoError(t, err)
	assert.True(t, peek.IsException())
	code, ok := peek.Code.AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(1031), code)
	assert.Equal(t, failure.KindServerReported, peek.ServerFailure().Kind)
	assert.Equal(t, "Invalid user ID or password.", peek.ServerFailure().Message)

	_, err = PeekQName([]byte(`[1, 2]`))
	assert.True(t, failure.Is(err, failure.KindDecode))
	_, err = PeekQName([]byte(`<html>`))
	assert.True(t, failure.Is(err, failure.KindDecode))
}

type searchResponse struct {
	Response
	TotalFound    int         `json:"totalFound"`
	SearchResults []ObjectRef `json:"searchResults"`
}

func TestDecode(t *testing.T) {
	raw := []byte(`{
		".QName": "http://teamcenter.com/Schemas/Query/2012-10/Finder.SearchResponse",
		"totalFound": 1,
		"searchResults": [{"uid": "R1", "className": "ItemRevision", "type": "ItemRevision"}],
		"ServiceData": {
			"plain": ["R1"],
			"modelObjects": {
				"R1": {"uid": "R1", "className": "ItemRevision", "type": "ItemRevision", "props": {"object_name": {"dbValues": ["db"], "uiValues": ["ui"]}}}
			}
		}
	}`)

	decoded, err := Decode[searchResponse](raw)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.TotalFound)
	require.Len(t, decoded.SearchResults, 1)
	record, ok := decoded.ServiceData.Lookup("R1")
	require.True(t, ok)
	prop, ok := record.Property("object_name")
	require.True(t, ok)
	first, _ := prop.FirstUI()
	assert.Equal(t, "ui", first)
}

func TestDecodeFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind failure.Kind
	}{
		{name: "server exception", raw: `{".QName": "x.ServiceException", "message": "boom"}`, kind: failure.KindServerReported},
		{name: "message field only", raw: `{".QName": "x.SearchResponse", "message": "no access"}`, kind: failure.KindServerReported},
		{name: "wrong type", raw: `{".QName": "x.SearchResponse", "totalFound": "many"}`, kind: failure.KindDecode},
		{name: "missing required uid", raw: `{".QName": "x.SearchResponse", "searchResults": [{"className": "Item"}]}`, kind: failure.KindDecode},
		{name: "missing required uid in side map", raw: `{".QName": "x.SearchResponse", "ServiceData": {"modelObjects": {"A": {"type": "Item"}}}}`, kind: failure.KindDecode},
		{name: "not json", raw: `not json`, kind: failure.KindDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[searchResponse]([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, tt.kind, failure.KindOf(err))
		})
	}
}

func TestDecodeReportsRequiredPath(t *testing.T) {
	_, err := Decode[searchResponse]([]byte(`{"searchResults": [{"uid": "A"}, {"type": "Item"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "searchResults[1].uid")
}

func TestModelObjectsShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		count int
	}{
		{name: "object", raw: `{"modelObjects": {"A": {"uid": "A"}, "B": {"uid": "B"}}}`, count: 2},
		{name: "empty array", raw: `{"modelObjects": []}`, count: 0},
		{name: "array of records", raw: `{"modelObjects": [{"uid": "A"}, {"uid": ""}]}`, count: 1},
		{name: "null", raw: `{"modelObjects": null}`, count: 0},
		{name: "absent", raw: `{}`, count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data ServiceData
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &data))
			assert.Len(t, data.ModelObjects, tt.count)
		})
	}

	var data ServiceData
	assert.Error(t, json.Unmarshal([]byte(`{"modelObjects": "nope"}`), &data))
}

func TestLookupToleratesAbsence(t *testing.T) {
	var data *ServiceData
	_, ok := data.Lookup("A")
	assert.False(t, ok)

	data = &ServiceData{ModelObjects: ModelObjects{"A": nil}}
	_, ok = data.Lookup("A")
	assert.False(t, ok)
}

func TestStableID(t *testing.T) {
	assert.Equal(t, "000123", (&ObjectRef{UID: "u", ObjectID: "000123"}).StableID())
	assert.Equal(t, "u", (&ObjectRef{UID: "u"}).StableID())
}
