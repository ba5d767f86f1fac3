package helper

import (
	"errors"
	"fmt"
	"time"

	"github.com/ryanuber/columnize"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "
	return columnize.Format(in, columnConf)
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}

func FormatError(cliMsg string, err error) string {

	code := 400

	var errResp *state.ErrorResp
	if errors.As(err, &errResp) {
		code = errResp.StatusCode()
	}

	return FormatKV([]string{
		fmt.Sprintf("Description|%s", cliMsg),
		fmt.Sprintf("Error|%s", err),
		fmt.Sprintf("Code|%v", code),
	})
}
