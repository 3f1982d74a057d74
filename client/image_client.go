package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kkratossdead/mobile-renting/domain"
)

type ImageClient struct {
	transport *Transport
	cb        *gobreaker.CircuitBreaker
}

func NewImageClient(transport *Transport, logger *logrus.Logger) *ImageClient {
	return &ImageClient{
		transport: transport,
		cb:        CircuitBreaker("imageClient", logger),
	}
}

type imageUpload struct {
	PropertyID  string `json:"propertyId"`
	ImageBase64 string `json:"imageBase64"`
}

func (ic *ImageClient) Upload(ctx context.Context, propertyID, imageBase64 string) error {
	payload := imageUpload{
		PropertyID:  propertyID,
		ImageBase64: imageBase64,
	}

	_, err := ic.cb.Execute(func() (interface{}, error) {
		return ic.transport.Post(ctx, "/image/upload", payload)
	})
	return err
}

func (ic *ImageClient) GetByProperty(ctx context.Context, propertyID string) ([]*domain.PropertyImage, error) {
	result, err := ic.cb.Execute(func() (interface{}, error) {
		return ic.transport.Get(ctx, "/image/property/"+url.PathEscape(propertyID))
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var images []*domain.PropertyImage
	if err := decode(raw, &images); err != nil {
		return nil, err
	}

	for _, image := range images {
		image.Normalize()
	}
	return images, nil
}
