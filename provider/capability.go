package provider

import "context"

// BreadcrumbCapable is implemented by error-tracking providers that record
// breadcrumb trails. The manager checks this by type assertion.
type BreadcrumbCapable interface {
	AddBreadcrumb(ctx context.Context, crumb Breadcrumb) error
}

// TransactionCapable is implemented by providers that support performance
// transactions.
type TransactionCapable interface {
	StartTransaction(ctx context.Context, name string) error
	FinishTransaction(ctx context.Context, name string) error
}
