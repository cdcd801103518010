package steps

import (
	"fmt"
	"strconv"
)

func (fc *FeatureContext) iSubmitAReadingWithTemperature(temperature string) error {
	return fc.iSubmitTheReading(fmt.Sprintf(`{"temperature": %s}`, temperature))
}

func (fc *FeatureContext) iSubmitTheReading(body string) error {
	return fc.setResponse(fc.apiDriver.PostTemperature(body))
}

func (fc *FeatureContext) iGetTheLastTemperature() error {
	return fc.setResponse(fc.apiDriver.GetTemperature())
}

func (fc *FeatureContext) theReadingShouldBeAcknowledged() error {
	fc.require.Equal(map[string]any{"status": "success"}, fc.responseData)
	return nil
}

func (fc *FeatureContext) theTemperatureShouldBe(expected string) error {
	want, err := strconv.ParseFloat(expected, 64)
	fc.require.NoError(err)

	fc.require.Contains(fc.responseData, "temperature")
	fc.require.Equal(want, fc.responseData["temperature"])
	return nil
}

func (fc *FeatureContext) theTemperatureShouldBeText(expected string) error {
	fc.require.Equal(expected, fc.responseData["temperature"])
	return nil
}

func (fc *FeatureContext) theTemperatureShouldBeNull() error {
	fc.require.Contains(fc.responseData, "temperature")
	fc.require.Nil(fc.responseData["temperature"])
	return nil
}

func (fc *FeatureContext) iEvaluateAnAlertWithCurrentAndThreshold(current, threshold string) error {
	return fc.iEvaluateAnAlertWithBody(fmt.Sprintf(`{"current_temperature": %s, "threshold_temperature": %s}`, current, threshold))
}

func (fc *FeatureContext) iEvaluateAnAlertWithBody(body string) error {
	return fc.setResponse(fc.apiDriver.EvaluateAlert(body))
}

func (fc *FeatureContext) theAlertStatusShouldBe(status string) error {
	fc.require.Equal(status, fc.responseData["status"])
	fc.require.Contains(fc.responseData, "current_temperature")
	fc.require.Contains(fc.responseData, "threshold_temperature")
	return nil
}

func (fc *FeatureContext) theEmailResponseStatusShouldBe(status string) error {
	emailResponse, ok := fc.responseData["email_response"].(map[string]any)
	fc.require.True(ok, "email_response should be an object")
	fc.require.Equal(status, emailResponse["status"])
	return nil
}

func (fc *FeatureContext) theResponseShouldNotContainAnEmailResponse() error {
	fc.require.NotContains(fc.responseData, "email_response")
	return nil
}
