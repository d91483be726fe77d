package root

import (
	"github.com/vermimetrics/vermi-platform/apps/cli/cmd/account"
	"github.com/vermimetrics/vermi-platform/apps/cli/cmd/auth"
	"github.com/vermimetrics/vermi-platform/apps/cli/cmd/tanks"
	"github.com/vermimetrics/vermi-platform/apps/cli/wiring"
)

func init() {
	wiring.Register(Root())
	Root().AddCommand(account.Command())
	Root().AddCommand(auth.Command())
	Root().AddCommand(tanks.Command())
}
