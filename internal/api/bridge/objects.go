package bridge

import (
	"github.com/go-chi/chi/v5"
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/envelope"
	"github.com/skybi/soa-bridge/internal/function"
	"github.com/skybi/soa-bridge/internal/normalize"
	"github.com/skybi/soa-bridge/internal/soa"
	"net/http"
	"strings"
)

type endpointGetPropertiesResponse struct {
	UID        string            `json:"uid"`
	Properties map[string]string `json:"properties"`
}

// EndpointGetProperties handles the 'GET /v1/objects/{uid}/properties?attrs={string[]}&class={string?}&type={string?}' endpoint
func (service *Service) EndpointGetProperties(writer http.ResponseWriter, request *http.Request) {
	attrs, validationErr := schema.QueryList(request, "attrs", true)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	ref := envelope.ObjectRef{
		UID:       chi.URLParam(request, "uid"),
		ClassName: strings.TrimSpace(request.URL.Query().Get("class")),
		Type:      strings.TrimSpace(request.URL.Query().Get("type")),
	}
	props, err := service.Sessions.Client().GetProperties(request.Context(), sessionOf(request), ref, attrs)
	if err != nil {
		service.writeFailure(writer, err)
		return
	}

	service.writer.WriteJSON(writer, &endpointGetPropertiesResponse{
		UID:        ref.UID,
		Properties: props,
	})
}

type endpointGetChildrenResponse struct {
	UID      string              `json:"uid"`
	Children []*normalize.Record `json:"children"`
}

// EndpointGetChildren handles the 'GET /v1/objects/{uid}/children?relation={string[]?}&other_side_types={string[]?}&attrs={string[]?}&expand_item_revision={bool?:false}' endpoint
func (service *Service) EndpointGetChildren(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	relations, _ := schema.QueryList(request, "relation", false)
	otherSideTypes, _ := schema.QueryList(request, "other_side_types", false)
	attrs, _ := schema.QueryList(request, "attrs", false)
	if len(attrs) == 0 {
		attrs = []string{"object_name"}
	}

	expandRevision, validationErr := schema.QueryBool(request, "expand_item_revision", false)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	preferences := soa.ExpandPreferences{
		ExpandItemRevision: expandRevision,
		Relations: function.Map(relations, func(relation string) soa.RelationFilter {
			return soa.RelationFilter{
				RelationName:         relation,
				OtherSideObjectTypes: otherSideTypes,
			}
		}),
	}

	container := envelope.ObjectRef{UID: chi.URLParam(request, "uid")}
	children, err := service.Sessions.Client().ExpandChildren(request.Context(), sessionOf(request), container, preferences, attrs)
	if err != nil {
		service.writeFailure(writer, err)
		return
	}

	service.writer.WriteJSON(writer, &endpointGetChildrenResponse{
		UID:      container.UID,
		Children: children,
	})
}

type endpointCreateItemRequestPayload struct {
	ItemID       *string `json:"item_id"`
	Name         *string `json:"name" required:"true"`
	Type         *string `json:"type" required:"true"`
	RevisionID   *string `json:"revision_id"`
	Description  *string `json:"description"`
	ContainerUID *string `json:"container_uid"`
	Relation     *string `json:"relation"`
}

// EndpointCreateItem handles the 'POST /v1/items' endpoint
func (service *Service) EndpointCreateItem(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointCreateItemRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	input := soa.ItemCreate{
		Properties: []soa.ItemProperties{{
			ClientID:    "bridge",
			ItemID:      valueOr(payload.ItemID, ""),
			Name:        *payload.Name,
			Type:        *payload.Type,
			RevisionID:  valueOr(payload.RevisionID, ""),
			Description: valueOr(payload.Description, ""),
		}},
		Relation: valueOr(payload.Relation, ""),
	}
	if payload.ContainerUID != nil && *payload.ContainerUID != "" {
		input.Container = &envelope.ObjectRef{UID: *payload.ContainerUID}
	}

	created, err := service.Sessions.Client().CreateItem(request.Context(), sessionOf(request), input)
	if err != nil {
		service.writeFailure(writer, err)
		return
	}
	if created == nil {
		service.writer.WriteErrors(writer, http.StatusUnprocessableEntity, schema.ErrItemNotCreated)
		return
	}

	service.writer.WriteJSONCode(writer, http.StatusCreated, created)
}
