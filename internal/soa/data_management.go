package soa

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/envelope"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/normalize"
	"github.com/skybi/soa-bridge/internal/session"
)

type getPropertiesBody struct {
	Objects    []envelope.ObjectRef `json:"objects"`
	Attributes []string             `json:"attributes"`
}

// GetProperties fetches the first display value of the given attributes of a single object.
// Attributes the server did not return are present with an empty value.
func (client *Client) GetProperties(ctx context.Context, ses *session.Session, object envelope.ObjectRef, attrs []string) (map[string]string, error) {
	if object.UID == "" {
		return nil, &failure.Error{Kind: failure.KindDecode, Endpoint: EndpointGetProperties.Path(), Message: "the object reference carries no UID"}
	}

	body := &getPropertiesBody{
		Objects:    []envelope.ObjectRef{object},
		Attributes: nonNil(attrs),
	}
	response, err := call[envelope.Response](ctx, client, ses, EndpointGetProperties, body, nil)
	if err != nil {
		return nil, err
	}
	logPartialErrors(EndpointGetProperties, response.ServiceData)
	return normalize.Properties(response.ServiceData, object.UID, attrs), nil
}

// RelationFilter restricts an expansion to a single relation type
type RelationFilter struct {
	RelationName         string   `json:"relationTypeName"`
	OtherSideObjectTypes []string `json:"otherSideObjectTypes"`
}

// ExpandPreferences configures which relations of a container are expanded
type ExpandPreferences struct {
	ExpandItemRevision bool             `json:"expItemRev"`
	Relations          []RelationFilter `json:"info"`
}

type expandRelationsBody struct {
	PrimaryObjects []envelope.ObjectRef `json:"primaryObjects"`
	Preferences    *ExpandPreferences   `json:"pref"`
}

type expandRelationsResponse struct {
	envelope.Response
	Output []*expandRelationsOutput `json:"output"`
}

type expandRelationsOutput struct {
	InputObject      envelope.ObjectRef      `json:"inputObject"`
	RelationshipData []*relationshipDataItem `json:"relationshipData"`
}

type relationshipDataItem struct {
	RelationName        string                `json:"relationName"`
	RelationshipObjects []*relationshipObject `json:"relationshipObjects"`
}

type relationshipObject struct {
	OtherSideObject envelope.ObjectRef  `json:"otherSideObject"`
	Relation        *envelope.ObjectRef `json:"relation,omitempty"`
}

// ExpandChildren expands the relations of a container and fetches the given attributes of every child.
// Children whose property fetch fails are left out of the result.
func (client *Client) ExpandChildren(ctx context.Context, ses *session.Session, container envelope.ObjectRef, preferences ExpandPreferences, attrs []string) ([]*normalize.Record, error) {
	relations := make([]RelationFilter, 0, len(preferences.Relations))
	for _, filter := range preferences.Relations {
		filter.OtherSideObjectTypes = nonNil(filter.OtherSideObjectTypes)
		relations = append(relations, filter)
	}
	preferences.Relations = relations

	body := &expandRelationsBody{
		PrimaryObjects: []envelope.ObjectRef{container},
		Preferences:    &preferences,
	}
	response, err := call[expandRelationsResponse](ctx, client, ses, EndpointExpandRelations, body, nil)
	if err != nil {
		return nil, err
	}
	logPartialErrors(EndpointExpandRelations, response.ServiceData)

	var refs []envelope.ObjectRef
	for _, output := range response.Output {
		if output == nil || (output.InputObject.UID != "" && output.InputObject.UID != container.UID) {
			continue
		}
		for _, data := range output.RelationshipData {
			if data == nil {
				continue
			}
			for _, object := range data.RelationshipObjects {
				if object != nil {
					refs = append(refs, object.OtherSideObject)
				}
			}
		}
	}
	children := normalize.Children(response.ServiceData, container.UID, refs)

	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.KindTransport, EndpointExpandRelations.Path(), err)
	}

	records := normalize.FanOut(ctx, children, client.options.FanOutParallelism, func(ctx context.Context, child *envelope.ObjectRecord) (map[string]string, error) {
		return client.GetProperties(ctx, ses, child.ObjectRef, attrs)
	})
	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.KindTransport, EndpointGetProperties.Path(), err)
	}
	log.Debug().
		Str("container", container.UID).
		Int("children", len(children)).
		Int("fetched", len(records)).
		Msg("expanded container")
	return records, nil
}

// ItemProperties describes a single item to create
type ItemProperties struct {
	ClientID    string `json:"clientId"`
	ItemID      string `json:"itemId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	RevisionID  string `json:"revId"`
	Description string `json:"description"`
	UOM         string `json:"uom"`
}

// ItemCreate holds the input of an item creation
type ItemCreate struct {
	Properties []ItemProperties    `json:"properties"`
	Container  *envelope.ObjectRef `json:"container,omitempty"`
	Relation   string              `json:"relationType"`
}

// CreatedItem represents an item and revision the server created
type CreatedItem struct {
	ClientID     string             `json:"clientId"`
	Item         envelope.ObjectRef `json:"item" required:"true"`
	ItemRevision envelope.ObjectRef `json:"itemRev" required:"true"`
}

type createItemsResponse struct {
	envelope.Response
	Output []CreatedItem `json:"output"`
}

// CreateItem creates items and returns the first created one.
// It returns nil without an error if the server created nothing; the reasons are logged as partial errors.
func (client *Client) CreateItem(ctx context.Context, ses *session.Session, input ItemCreate) (*CreatedItem, error) {
	if input.Properties == nil {
		input.Properties = []ItemProperties{}
	}

	response, err := call[createItemsResponse](ctx, client, ses, EndpointCreateItems, &input, nil)
	if err != nil {
		return nil, err
	}
	logPartialErrors(EndpointCreateItems, response.ServiceData)

	created, ok := normalize.FirstCreated(response.Output)
	if !ok {
		return nil, nil
	}
	return &created, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
