package enum

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusErrorAuth AccountStatus = "error_auth"
)

func (t AccountStatus) String() string {
	return string(t)
}

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierStarter SubscriptionTier = "starter"
	TierAgency  SubscriptionTier = "agency"
)

func (t SubscriptionTier) String() string {
	return string(t)
}
