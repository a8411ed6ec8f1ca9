package main

import "mini_shop/cmd/server/commands"

// @title Mini Shop API
// @version 1.0
// @description 商品、订单、退货、评价与工单接口
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	commands.Execute()
}
