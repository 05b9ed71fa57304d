package emm

// Cause はEMM原因値（TS 24.301 9.9.3.9）
type Cause uint8

const (
	CauseIMSIUnknownInHSS         Cause = 2
	CauseIllegalUE                Cause = 3
	CauseEPSServicesNotAllowed    Cause = 7
	CauseUEIdentityNotDerived     Cause = 9
	CauseImplicitlyDetached       Cause = 10
	CauseNetworkFailure           Cause = 17
	CauseCongestion               Cause = 22
	CauseUESecurityCapMismatch    Cause = 23
	CauseSecurityModeRejected     Cause = 24
	CauseSemanticallyIncorrect    Cause = 95
	CauseInvalidMandatoryInfo     Cause = 96
	CauseMessageTypeNonExistent   Cause = 97
	CauseMessageTypeNotCompatible Cause = 98
	CauseNotCompatibleWithState   Cause = 101
	CauseProtocolErrorUnspecified Cause = 111
)

// ReleaseCause は無線側へ通知するUEコンテキスト解放理由
type ReleaseCause string

const (
	ReleaseNormal             ReleaseCause = "nas-normal-release"
	ReleaseDetach             ReleaseCause = "nas-detach"
	ReleaseImplicitDetach     ReleaseCause = "nas-implicit-detach"
	ReleaseAuthFailure        ReleaseCause = "nas-authentication-failure"
	ReleaseUnspecified        ReleaseCause = "nas-unspecified"
	ReleaseUserInactivity     ReleaseCause = "radio-user-inactivity"
	ReleaseRadioConnectionErr ReleaseCause = "radio-connection-with-ue-lost"
)
