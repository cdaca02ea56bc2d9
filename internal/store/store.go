package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"dxip_harvester/internal/config"
	"dxip_harvester/internal/extract"
	"dxip_harvester/internal/file"
	"dxip_harvester/internal/logger"

	"github.com/go-redis/redis/v8"
)

// RecordStore IP池统一接口，支持本地文件和Redis两种实现
// 所有记录操作都通过该接口，便于热切换和扩展
type RecordStore interface {
	Add(rec extract.Record) error          // 添加单条记录，地址重复时保留先出现者
	Replace(recs []extract.Record) error   // 以一次采集结果整体替换
	GetAll() ([]extract.Record, error)     // 获取全部记录，按Mbps降序
	Len() (int, error)                     // 获取记录数量
}

// 本地文件实现（内存+锁，落盘格式即最终输出文本）
type FileRecordStore struct {
	records  []extract.Record
	seen     map[string]bool
	mu       sync.Mutex
	filename string
	label    string
}

// 新建本地文件IP池，label为输出行的标签前缀
func NewFileRecordStore(filename, label string) *FileRecordStore {
	store := &FileRecordStore{
		records:  make([]extract.Record, 0),
		seen:     make(map[string]bool),
		filename: filename,
		label:    label,
	}

	// 尝试从现有结果文件恢复
	if err := store.loadFromFile(); err != nil {
		logger.Error("无法从文件加载记录: %v", err)
	}

	return store
}

// 从结果文件恢复记录。行格式为"地址  标签-速度文本"，速度数值
// 从速度文本重新换算，占位文本按0.0处理。
func (s *FileRecordStore) loadFromFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // 文件不存在不是错误
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	s.records = make([]extract.Record, 0)
	s.seen = make(map[string]bool)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "  ", 2)
		addr := strings.TrimSpace(parts[0])
		if !extract.ValidAddress(addr) || s.seen[addr] {
			continue
		}
		speedText := ""
		if len(parts) == 2 {
			if i := strings.Index(parts[1], "-"); i >= 0 {
				speedText = parts[1][i+1:]
			}
		}
		s.seen[addr] = true
		s.records = append(s.records, extract.NewRecord(addr, speedText))
	}

	return scanner.Err()
}

// 保存记录到结果文件，持锁调用
func (s *FileRecordStore) saveToFile() error {
	return file.WriteLines(s.filename, extract.FormatRecords(s.records, s.label))
}

// Add 添加记录并保存到文件，已存在的地址保持原记录不变
func (s *FileRecordStore) Add(rec extract.Record) error {
	if rec.Address == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[rec.Address] {
		return nil
	}
	s.seen[rec.Address] = true
	s.records = append(s.records, rec)

	// 新记录追加后稳定排序，同速记录保持先来后到
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Mbps > s.records[j].Mbps
	})

	// 每次添加都保存文件可能性能差，可以考虑延迟批量保存
	return s.saveToFile()
}

// Replace 以一次采集结果整体替换并落盘
func (s *FileRecordStore) Replace(recs []extract.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]extract.Record, 0, len(recs))
	s.seen = make(map[string]bool, len(recs))
	for _, rec := range recs {
		if rec.Address == "" || s.seen[rec.Address] {
			continue
		}
		s.seen[rec.Address] = true
		s.records = append(s.records, rec)
	}
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Mbps > s.records[j].Mbps
	})

	return s.saveToFile()
}

// GetAll 获取所有记录
func (s *FileRecordStore) GetAll() ([]extract.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]extract.Record, len(s.records))
	copy(result, s.records)

	return result, nil
}

// Len 获取记录数量
func (s *FileRecordStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records), nil
}

// Redis实现：有序集合存排名(score=Mbps)，哈希表存速度展示文本
type RedisRecordStore struct {
	client     *redis.Client
	rankKey    string
	displayKey string
	ctx        context.Context
}

// 新建Redis IP池
func NewRedisRecordStore(host string, port int, password string) *RedisRecordStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       0,
	})

	store := &RedisRecordStore{
		client:     client,
		rankKey:    "dxip:rank",
		displayKey: "dxip:display",
		ctx:        context.Background(),
	}

	if count, err := client.ZCard(store.ctx, store.rankKey).Result(); err == nil {
		logger.Pool("已从Redis加载 %d 条记录", count)
	} else {
		logger.Error("从Redis加载记录失败: %v", err)
	}

	return store
}

// Add 添加记录到Redis，ZADD NX保证先出现的地址不被改写
func (s *RedisRecordStore) Add(rec extract.Record) error {
	if rec.Address == "" {
		return nil
	}

	added, err := s.client.ZAddNX(s.ctx, s.rankKey, &redis.Z{
		Score:  rec.Mbps,
		Member: rec.Address,
	}).Result()
	if err != nil {
		return err
	}
	if added == 0 {
		return nil // 地址已存在，保留原记录
	}

	return s.client.HSet(s.ctx, s.displayKey, rec.Address, rec.Display).Err()
}

// Replace 清空后批量写入一次采集结果
func (s *RedisRecordStore) Replace(recs []extract.Record) error {
	pipe := s.client.TxPipeline()
	pipe.Del(s.ctx, s.rankKey, s.displayKey)
	for _, rec := range recs {
		if rec.Address == "" {
			continue
		}
		pipe.ZAddNX(s.ctx, s.rankKey, &redis.Z{Score: rec.Mbps, Member: rec.Address})
		pipe.HSetNX(s.ctx, s.displayKey, rec.Address, rec.Display)
	}
	_, err := pipe.Exec(s.ctx)
	return err
}

// GetAll 获取所有Redis记录，按Mbps降序；同分记录按地址字典序，
// 与文件实现的先来后到顺序略有差异
func (s *RedisRecordStore) GetAll() ([]extract.Record, error) {
	members, err := s.client.ZRevRangeWithScores(s.ctx, s.rankKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	displays, err := s.client.HGetAll(s.ctx, s.displayKey).Result()
	if err != nil {
		return nil, err
	}

	records := make([]extract.Record, 0, len(members))
	for _, member := range members {
		addr, ok := member.Member.(string)
		if !ok {
			continue
		}
		display := displays[addr]
		if display == "" {
			display = extract.UnknownSpeed
		}
		records = append(records, extract.Record{
			Address: addr,
			Mbps:    member.Score,
			Display: display,
		})
	}

	return records, nil
}

// Len 获取Redis记录数量
func (s *RedisRecordStore) Len() (int, error) {
	return int(s.client.ZCard(s.ctx, s.rankKey).Val()), nil
}

// InitRecordStore 按配置选择IP池存储实现
func InitRecordStore(cfg config.StorageConfig, label string) RecordStore {
	if cfg.Type == "redis" {
		logger.Info("使用Redis作为IP池存储")
		return NewRedisRecordStore(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	} else {
		logger.Info("使用本地文件作为IP池存储")
		return NewFileRecordStore(cfg.FileName, label)
	}
}
