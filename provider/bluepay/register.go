package bluepay

import "github.com/mstgnz/bluepay/provider"

// Register BluePay with the gateway registry
func init() {
	provider.Register(SystemName, NewFactory(nil))
}
