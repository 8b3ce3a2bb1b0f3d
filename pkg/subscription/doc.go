// Package subscription provides the read-only subscription anchor provider
// consumed by the period calculator. It deliberately exposes nothing of the
// billing write path (checkout, webhooks, portals): the quota engine only
// consumes a subscription's status, current billing period and creation
// timestamp to anchor billing-cycle allowance windows.
//
// PaddleAnchors adapts the Paddle API; installations without a billing
// provider use period.StaticAnchors or run without anchors entirely, in
// which case billing-cycle limits fall back to calendar months.
package subscription
