package zenapi

import (
	"github.com/c9s/requestgen"
	"github.com/pkg/errors"

	"github.com/abel123/zeus/pkg/types"
)

// ElementsResponse is the body of an elements request.
type ElementsResponse = types.AnnotationPayload

//go:generate requestgen -method POST -url "/zen/elements" -type GetElementsRequest -responseType ElementsResponse
type GetElementsRequest struct {
	client requestgen.APIClient

	from       types.Timestamp         `param:"from"`
	to         types.Timestamp         `param:"to"`
	symbol     string                  `param:"symbol,required"`
	resolution string                  `param:"resolution,required"`
	indicators []types.IndicatorConfig `param:"indicator_config"`
}

func (c *RestClient) NewGetElementsRequest() *GetElementsRequest {
	return &GetElementsRequest{client: c}
}

// NewHistoricalGetElementsRequest builds an elements request that asks the service to
// ignore realtime bars.
func (c *RestClient) NewHistoricalGetElementsRequest() *GetElementsRequest {
	return &GetElementsRequest{client: &historicalOnlyClient{RestClient: c}}
}

func validateIndicators(indicators []types.IndicatorConfig) error {
	for i, c := range indicators {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "indicator #%d", i)
		}
	}

	return nil
}
