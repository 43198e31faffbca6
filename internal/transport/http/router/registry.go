package router

import "github.com/gin-gonic/gin"

// APIModule 模块可选择实现其中一个或两个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

func MountAPI(g *gin.RouterGroup, mods ...APIModule) {
	for _, m := range mods {
		m.MountAPI(g)
	}
}

func MountAdmin(g *gin.RouterGroup, mods ...AdminModule) {
	for _, m := range mods {
		m.MountAdmin(g)
	}
}
