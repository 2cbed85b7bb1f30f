package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/repository"
)

// 业务错误
var (
	// ErrCartSync 远端同步失败 (可恢复)：本地已回滚，调用方只需提示用户重试
	ErrCartSync = errors.New("购物车同步失败，本地状态已回滚")
	// ErrLoginRequired 该操作要求登录态
	ErrLoginRequired = errors.New("该操作需要先登录")
)

// CartOwner 购物车归属人：匿名态传 DeviceID，登录态传 UserID + Token
type CartOwner struct {
	DeviceID string
	UserID   int64
	Token    string
}

// Authenticated 是否登录态
func (o CartOwner) Authenticated() bool { return o.UserID != 0 }

// CartService 零售购物车 store + 登录合并协议
// 本地表是渲染用的会话模型，远端是权威数据源。
// 所有写操作都是乐观更新：本地先写，远端失败则回滚到最后确认值。
type CartService struct {
	cartRepo repository.CartRepository
	client   *resty.Client

	// 请求代数守卫：每行一个单调递增代数，
	// 迟到的远端响应如果代数已过期，不允许覆盖更新的乐观值
	genMu sync.Mutex
	gens  map[string]uint64
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, client *resty.Client) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		client:   client,
		gens:     make(map[string]uint64),
	}
}

// ==================== 读路径 ====================

// List 列出归属人的全部行
// 登录态下先确认合并已完成 (无残留设备行)，避免首屏闪空车。
func (s *CartService) List(ctx context.Context, owner CartOwner, deviceID string) ([]model.CartLine, error) {
	if owner.Authenticated() {
		if err := s.MergeDeviceCart(ctx, deviceID, owner.UserID, owner.Token); err != nil {
			// 合并失败不阻塞读：接受拆分购物车的降级形态
			log.Printf("[Cart] 读前合并失败 (降级继续): %v", err)
		}
		return s.cartRepo.ListByUser(ctx, owner.UserID)
	}
	return s.cartRepo.ListByDevice(ctx, owner.DeviceID)
}

// ==================== 写路径 (乐观更新) ====================

// Add 加购 (set 语义：同一 productPriceId 重复加购时数量覆盖，不累加)
func (s *CartService) Add(ctx context.Context, owner CartOwner, req dto.AddCartLineReq) error {
	return s.setQuantity(ctx, owner, req.ProductID, req.ProductPriceID, req.Quantity, req.Variant)
}

// Increment 增量加购 (显式累加语义)
func (s *CartService) Increment(ctx context.Context, owner CartOwner, req dto.IncrementCartLineReq) error {
	current := 0
	if line, err := s.findLine(ctx, owner, req.ProductPriceID); err == nil {
		current = line.Quantity
	}
	return s.setQuantity(ctx, owner, req.ProductID, req.ProductPriceID, current+req.Delta, nil)
}

// Update 修改数量
func (s *CartService) Update(ctx context.Context, owner CartOwner, req dto.UpdateCartLineReq) error {
	line, err := s.findLine(ctx, owner, req.ProductPriceID)
	if err != nil {
		return fmt.Errorf("待更新的行不存在: %w", err)
	}
	return s.setQuantity(ctx, owner, line.ProductID, req.ProductPriceID, req.Quantity, nil)
}

// Remove 删除行
// 乐观删除：本地先删，远端失败则按最后确认数量恢复该行。
func (s *CartService) Remove(ctx context.Context, owner CartOwner, productPriceID int64) error {
	line, err := s.findLine(ctx, owner, productPriceID)
	if err != nil {
		// 行本来就不在，按幂等成功处理
		return nil
	}
	backup := *line
	gen := s.bumpGen(owner, productPriceID)

	// 1. 本地乐观删除
	if err := s.cartRepo.Delete(ctx, line.ID); err != nil {
		return fmt.Errorf("本地删除失败: %w", err)
	}

	// 2. 远端确认
	if err := s.remoteRemove(ctx, owner, productPriceID); err != nil {
		// 3. 回滚：恢复最后确认状态
		if s.genCurrent(owner, productPriceID, gen) {
			restored := backup
			restored.ID = 0
			restored.Quantity = backup.ConfirmedQuantity
			if restored.Quantity == 0 {
				restored.Quantity = backup.Quantity
			}
			if createErr := s.cartRepo.Create(ctx, &restored); createErr != nil {
				log.Printf("[Cart] 回滚恢复行失败: %v", createErr)
			}
		}
		log.Printf("[Cart] 远端删除失败已回滚: %v", err)
		return ErrCartSync
	}
	return nil
}

// setQuantity 写路径公共实现
func (s *CartService) setQuantity(ctx context.Context, owner CartOwner, productID, productPriceID int64, quantity int, variant []byte) error {
	gen := s.bumpGen(owner, productPriceID)

	line, err := s.findLine(ctx, owner, productPriceID)
	created := false
	var prevQuantity int

	// 1. 本地乐观写入
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("本地查询失败: %w", err)
		}
		line = &model.CartLine{
			DeviceID:       owner.DeviceID,
			UserID:         owner.UserID,
			ProductID:      productID,
			ProductPriceID: productPriceID,
			Quantity:       quantity,
			AddedAt:        time.Now(),
			SyncStatus:     model.CartSyncPending,
		}
		if owner.Authenticated() {
			line.DeviceID = ""
		}
		if len(variant) > 0 {
			line.Variant = datatypes.JSON(variant)
		}
		if err := s.cartRepo.Create(ctx, line); err != nil {
			return fmt.Errorf("本地写入失败: %w", err)
		}
		created = true
	} else {
		prevQuantity = line.Quantity
		line.Quantity = quantity
		line.SyncStatus = model.CartSyncPending
		if len(variant) > 0 {
			line.Variant = datatypes.JSON(variant)
		}
		if err := s.cartRepo.Update(ctx, line); err != nil {
			return fmt.Errorf("本地写入失败: %w", err)
		}
	}

	// 2. 远端确认
	if err := s.remoteSet(ctx, owner, productID, productPriceID, quantity); err != nil {
		// 3. 回滚到最后确认值。代数已过期说明有更新的乐观写发生，放弃回滚。
		if s.genCurrent(owner, productPriceID, gen) {
			s.rollbackLine(ctx, line, created, prevQuantity)
		}
		log.Printf("[Cart] 远端同步失败已回滚 (price_id=%d): %v", productPriceID, err)
		return ErrCartSync
	}

	// 4. 确认成功，迟到响应同样受代数保护
	if s.genCurrent(owner, productPriceID, gen) {
		line.ConfirmedQuantity = quantity
		line.SyncStatus = model.CartSyncConfirmed
		if err := s.cartRepo.Update(ctx, line); err != nil {
			log.Printf("[Cart] 确认状态写入失败: %v", err)
		}
	}
	return nil
}

// rollbackLine 回滚一次乐观写
func (s *CartService) rollbackLine(ctx context.Context, line *model.CartLine, created bool, prevQuantity int) {
	if created {
		// 新建的行直接移除
		if err := s.cartRepo.Delete(ctx, line.ID); err != nil {
			log.Printf("[Cart] 回滚删除失败: %v", err)
		}
		return
	}
	if line.ConfirmedQuantity > 0 {
		line.Quantity = line.ConfirmedQuantity
	} else {
		line.Quantity = prevQuantity
	}
	line.SyncStatus = model.CartSyncConfirmed
	if err := s.cartRepo.Update(ctx, line); err != nil {
		log.Printf("[Cart] 回滚写入失败: %v", err)
	}
}

// ClearUser 清空某用户的本地购物车行 (登出时由会话服务调用)
// 用户 id 是敏感字段：登录会话结束后，带 user_id 的行不允许继续留在持久化存储里。
// 设备归属的行不受影响，设备 id 是非敏感持久化字段。
func (s *CartService) ClearUser(ctx context.Context, userID int64) {
	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		log.Printf("[Cart] 清空用户购物车失败: %v", err)
	}
}

// ==================== 登录合并协议 ====================

// MergeDeviceCart 把设备归属的购物车行挂到用户名下
// 幂等：没有设备行时直接返回 (二次调用天然 no-op)。
// 去重：同一 productPriceId 在设备车和用户车都存在时合并为一行，数量相加。
// 远端 attach 失败只记日志，不阻塞登录 (接受拆分购物车的降级形态)。
func (s *CartService) MergeDeviceCart(ctx context.Context, deviceID string, userID int64, token string) error {
	if deviceID == "" || userID == 0 {
		return nil
	}

	count, err := s.cartRepo.CountByDevice(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("合并前检查失败: %w", err)
	}
	if count == 0 {
		// 没有需要合并的行
		return nil
	}

	// 1. 本地重新归属 (事务内完成，保证不出现双归属/无归属中间态)
	err = s.cartRepo.Transaction(ctx, func(txRepo repository.CartRepository) error {
		deviceLines, err := txRepo.ListByDevice(ctx, deviceID)
		if err != nil {
			return err
		}
		for i := range deviceLines {
			deviceLine := deviceLines[i]

			userLine, err := txRepo.GetUserLine(ctx, userID, deviceLine.ProductPriceID)
			if err == nil {
				// 两边都有：数量相加合并为用户行，设备行消失
				userLine.Quantity += deviceLine.Quantity
				userLine.ConfirmedQuantity = userLine.Quantity
				if err := txRepo.Update(ctx, userLine); err != nil {
					return err
				}
				if err := txRepo.Delete(ctx, deviceLine.ID); err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			// 只有设备行：改归属
			deviceLine.DeviceID = ""
			deviceLine.UserID = userID
			if err := txRepo.Update(ctx, &deviceLine); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("本地合并失败: %w", err)
	}

	// 2. 通知远端挂接设备车 (失败不回滚本地，只记日志)
	if err := s.remoteAttach(ctx, deviceID, token); err != nil {
		log.Printf("[Cart] 远端挂接设备车失败 (登录继续): %v", err)
	}

	log.Printf("[Cart] 设备车合并完成 device=%s user=%d", deviceID, userID)
	return nil
}

// ==================== 远端调用 ====================

func (s *CartService) remoteSet(ctx context.Context, owner CartOwner, productID, productPriceID int64, quantity int) error {
	var result dto.UpstreamCartResp
	req := s.client.R().SetContext(ctx).SetResult(&result)

	var resp *resty.Response
	var err error
	if owner.Authenticated() {
		resp, err = req.
			SetAuthToken(owner.Token).
			SetBody(map[string]interface{}{
				"productId":      productID,
				"productPriceId": productPriceID,
				"quantity":       quantity,
			}).
			Post("/cart/user/update")
	} else {
		resp, err = req.
			SetBody(map[string]interface{}{
				"deviceId":       owner.DeviceID,
				"productId":      productID,
				"productPriceId": productPriceID,
				"quantity":       quantity,
			}).
			Post("/cart/device/update")
	}
	return checkUpstream(resp, err, &result)
}

func (s *CartService) remoteRemove(ctx context.Context, owner CartOwner, productPriceID int64) error {
	var result dto.UpstreamCartResp
	req := s.client.R().SetContext(ctx).SetResult(&result)

	var resp *resty.Response
	var err error
	if owner.Authenticated() {
		resp, err = req.
			SetAuthToken(owner.Token).
			SetBody(map[string]interface{}{"productPriceId": productPriceID}).
			Post("/cart/user/remove")
	} else {
		resp, err = req.
			SetBody(map[string]interface{}{
				"deviceId":       owner.DeviceID,
				"productPriceId": productPriceID,
			}).
			Post("/cart/device/remove")
	}
	return checkUpstream(resp, err, &result)
}

func (s *CartService) remoteAttach(ctx context.Context, deviceID, token string) error {
	var result dto.UpstreamCartResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetAuthToken(token).
		SetBody(map[string]interface{}{"deviceId": deviceID}).
		Post("/cart/user/attach")
	return checkUpstream(resp, err, &result)
}

// checkUpstream 远端响应统一检查：传输错误、HTTP 状态、业务状态逐级校验
func checkUpstream(resp *resty.Response, err error, result *dto.UpstreamCartResp) error {
	if err != nil {
		return fmt.Errorf("网络错误: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("远端返回 %d", resp.StatusCode())
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("响应解析失败: %w", err)
	}
	if !result.OK() {
		return fmt.Errorf("远端拒绝: %s", result.Message)
	}
	return nil
}

// ==================== 内部辅助 ====================

func (s *CartService) findLine(ctx context.Context, owner CartOwner, productPriceID int64) (*model.CartLine, error) {
	if owner.Authenticated() {
		return s.cartRepo.GetUserLine(ctx, owner.UserID, productPriceID)
	}
	return s.cartRepo.GetDeviceLine(ctx, owner.DeviceID, productPriceID)
}

func (s *CartService) genKey(owner CartOwner, productPriceID int64) string {
	if owner.Authenticated() {
		return fmt.Sprintf("u:%d:%d", owner.UserID, productPriceID)
	}
	return fmt.Sprintf("d:%s:%d", owner.DeviceID, productPriceID)
}

// bumpGen 推进某行的请求代数并返回新值
func (s *CartService) bumpGen(owner CartOwner, productPriceID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	key := s.genKey(owner, productPriceID)
	s.gens[key]++
	return s.gens[key]
}

// genCurrent 判断代数是否仍是最新 (迟到响应防覆盖)
func (s *CartService) genCurrent(owner CartOwner, productPriceID int64, gen uint64) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[s.genKey(owner, productPriceID)] == gen
}
