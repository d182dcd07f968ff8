package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeVarFileParse     Code = "VAR_FILE_PARSE_ERROR"
	CodeStateReadError   Code = "STATE_READ_ERROR"
	CodeStateParseError  Code = "STATE_PARSE_ERROR"
	CodeOutputNotFound   Code = "OUTPUT_NOT_FOUND"
	CodePlatformAPIError Code = "PLATFORM_API_ERROR"
	CodePlatformAuth     Code = "PLATFORM_AUTH_ERROR"
	CodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
	CodeStepFailed       Code = "STEP_FAILED"
	CodeStepTimeout      Code = "STEP_TIMEOUT"
	CodeRenderError      Code = "RENDER_ERROR"
)

func (c Code) String() string {
	return string(c)
}
