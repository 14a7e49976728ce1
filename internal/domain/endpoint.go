package domain

// Platform identifies a peer app family.
type Platform string

const (
	PlatformWechat Platform = "wechat"
	PlatformWeibo  Platform = "weibo"
)

// Endpoint is a target surface inside a platform.
type Endpoint string

const (
	// EndpointWechatFriend is a direct message to a contact or group.
	EndpointWechatFriend Endpoint = "wechat.friend"
	// EndpointWechatTimeline posts to Moments.
	EndpointWechatTimeline Endpoint = "wechat.timeline"
	// EndpointWechatFavorite saves to Favorites.
	EndpointWechatFavorite Endpoint = "wechat.favorite"

	EndpointWeiboTimeline Endpoint = "weibo.timeline"
)

// OperationKind distinguishes the two request families a handler serves.
type OperationKind string

const (
	OperationShare OperationKind = "share"
	OperationOauth OperationKind = "oauth"
)
