// Package awserrors maps AWS SDK failures onto the application error
// taxonomy so callers never string-match SDK messages themselves.
package awserrors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/hostinit/hostinit/internal/errors"
)

var authCodes = map[string]struct{}{
	"AuthFailure":           {},
	"UnauthorizedOperation": {},
	"AccessDenied":          {},
	"AccessDeniedException": {},
	"ExpiredToken":          {},
}

var notFoundCodes = map[string]struct{}{
	"InvalidInstanceID.NotFound":  {},
	"InvalidInstanceID.Malformed": {},
	"InvalidZone.NotFound":        {},
	"ResourceNotFoundException":   {},
}

// Classify wraps err with the application code matching its AWS API
// error code: auth failures, not-found, or a generic platform API error.
func Classify(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("context cancelled during AWS %s call", operation))
	}

	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if _, ok := authCodes[code]; ok {
			return errors.WrapUserFacing(err, errors.CodePlatformAuth,
				fmt.Sprintf("AWS authentication error during %s", operation),
				"Check your AWS credentials and IAM permissions.")
		}
		if _, ok := notFoundCodes[code]; ok {
			return errors.Wrap(err, errors.CodeResourceNotFound,
				fmt.Sprintf("resource not found during AWS %s call", operation))
		}
	}

	// Some SDK transport paths surface auth failures without a typed code.
	msg := err.Error()
	if strings.Contains(msg, "AuthFailure") || strings.Contains(msg, "UnauthorizedOperation") {
		return errors.WrapUserFacing(err, errors.CodePlatformAuth,
			fmt.Sprintf("AWS authentication error during %s", operation),
			"Check your AWS credentials and IAM permissions.")
	}

	return errors.Wrap(err, errors.CodePlatformAPIError,
		fmt.Sprintf("AWS %s call failed", operation))
}
