package driver

import (
	"fmt"
	"net/http"
	"strings"
)

type APIDriver struct {
	baseURL string
	client  *http.Client
}

func NewAPIDriver(baseURL string) *APIDriver {
	return &APIDriver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (d *APIDriver) GetHealthz() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/healthz", d.baseURL))
}

func (d *APIDriver) GetTemperature() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/temperature", d.baseURL))
}

func (d *APIDriver) PostTemperature(body string) (*http.Response, error) {
	return d.client.Post(fmt.Sprintf("%s/temperature", d.baseURL), "application/json", strings.NewReader(body))
}

func (d *APIDriver) EvaluateAlert(body string) (*http.Response, error) {
	return d.client.Post(fmt.Sprintf("%s/temperature/alert", d.baseURL), "application/json", strings.NewReader(body))
}
