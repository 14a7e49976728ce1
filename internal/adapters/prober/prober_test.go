package prober

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	p := NewStatic("weixin", "weixinULAPI://", " ")

	assert.True(t, p.CanOpen("weixin://"))
	assert.True(t, p.CanOpen("WEIXIN"))
	assert.True(t, p.CanOpen("weixinulapi://"))
	assert.False(t, p.CanOpen("sinaweibo://"))
	assert.False(t, p.CanOpen(""))

	p.Set("sinaweibo")
	assert.False(t, p.CanOpen("weixin://"))
	assert.True(t, p.CanOpen("sinaweibo://"))
}
