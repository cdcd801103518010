package steps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"thermo-server/test/functional/driver"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"
)

const _serverURLEnv = "THERMO_SERVER_URL"

type FeatureContext struct {
	apiDriver    *driver.APIDriver
	localServer  *driver.LocalServer
	response     *http.Response
	responseData map[string]any
	require      *require.Assertions
	t            godog.TestingT
}

func NewFeatureContext() *FeatureContext {
	return &FeatureContext{}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	// Generic steps
	ctx.Then(`^the response status code should be (\d+)$`, fc.theResponseStatusCodeShouldBe)
	ctx.Then(`^the error message should be "([^"]*)"$`, fc.theErrorMessageShouldBe)

	// Health steps
	ctx.When(`^I call the healthz endpoint$`, fc.iCallTheHealthzEndpoint)
	ctx.Then(`^the response should report success$`, fc.theResponseShouldReportSuccess)

	// Reading steps
	ctx.When(`^I submit a reading with temperature (-?\d+(?:\.\d+)?)$`, fc.iSubmitAReadingWithTemperature)
	ctx.When(`^I submit the reading '([^']*)'$`, fc.iSubmitTheReading)
	ctx.When(`^I get the last temperature$`, fc.iGetTheLastTemperature)
	ctx.Then(`^the temperature should be (-?\d+(?:\.\d+)?)$`, fc.theTemperatureShouldBe)
	ctx.Then(`^the temperature should be "([^"]*)"$`, fc.theTemperatureShouldBeText)
	ctx.Then(`^the temperature should be null$`, fc.theTemperatureShouldBeNull)
	ctx.Then(`^the reading should be acknowledged$`, fc.theReadingShouldBeAcknowledged)

	// Alert steps
	ctx.When(`^I evaluate an alert with current (-?\d+(?:\.\d+)?) and threshold (-?\d+(?:\.\d+)?)$`, fc.iEvaluateAnAlertWithCurrentAndThreshold)
	ctx.When(`^I evaluate an alert with body '([^']*)'$`, fc.iEvaluateAnAlertWithBody)
	ctx.Then(`^the alert status should be "([^"]*)"$`, fc.theAlertStatusShouldBe)
	ctx.Then(`^the email response status should be "([^"]*)"$`, fc.theEmailResponseStatusShouldBe)
	ctx.Then(`^the response should not contain an email response$`, fc.theResponseShouldNotContainAnEmailResponse)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.t = godog.T(ctx)
		fc.require = require.New(fc.t)

		fc.reset()
		return ctx, fc.connect()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if fc.localServer != nil {
			fc.localServer.Close()
			fc.localServer = nil
		}
		return ctx, err
	})
}

// connect targets THERMO_SERVER_URL when set, otherwise a fresh in-process
// server per scenario.
func (fc *FeatureContext) connect() error {
	if url, ok := os.LookupEnv(_serverURLEnv); ok && url != "" {
		fc.apiDriver = driver.NewAPIDriver(url)
		return nil
	}

	server, err := driver.StartLocalServer("ops@example.com")
	if err != nil {
		return err
	}
	fc.localServer = server
	fc.apiDriver = driver.NewAPIDriver(server.URL)
	return nil
}

func (fc *FeatureContext) reset() {
	fc.response = nil
	fc.responseData = nil
}

func (fc *FeatureContext) setResponse(response *http.Response, err error) error {
	if err != nil {
		return err
	}
	defer response.Body.Close()

	fc.response = response
	fc.responseData = nil
	return fc.decodeBody(response.Body, &fc.responseData)
}

func (fc *FeatureContext) decodeBody(body io.Reader, target any) error {
	return json.NewDecoder(body).Decode(target)
}

func (fc *FeatureContext) theResponseStatusCodeShouldBe(code int) error {
	fc.require.NotNil(fc.response, "no response recorded")
	fc.require.Equal(code, fc.response.StatusCode)
	return nil
}

func (fc *FeatureContext) theErrorMessageShouldBe(message string) error {
	fc.require.Equal("error", fc.responseData["status"])
	fc.require.Equal(message, fc.responseData["message"])
	return nil
}
