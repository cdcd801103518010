package steps

func (fc *FeatureContext) iCallTheHealthzEndpoint() error {
	return fc.setResponse(fc.apiDriver.GetHealthz())
}

func (fc *FeatureContext) theResponseShouldReportSuccess() error {
	fc.require.Equal("success", fc.responseData["status"])
	fc.require.NotEmpty(fc.responseData["node_id"])
	fc.require.NotEmpty(fc.responseData["version"])
	return nil
}
