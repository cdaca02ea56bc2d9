package requests

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// defaultUserAgent 默认按桌面Chrome伪装
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

// Response HTTP响应结构
type Response struct {
	*http.Response
	Text    string                    // 响应文本内容（已按编码转为UTF-8）
	Content []byte                    // 响应二进制内容
	JSON    func(v interface{}) error // 解析JSON的便捷方法
	URL     string                    // 最终的URL（处理重定向后）
	Headers map[string]string         // 响应头
}

// RequestOptions 请求选项
type RequestOptions struct {
	Headers     map[string]string // 请求头
	Timeout     int               // 超时时间（秒），默认30秒
	InsecureTLS bool              // 跳过TLS证书校验，默认校验
	Data        interface{}       // POST数据
	JSON        interface{}       // JSON数据
	Params      map[string]string // URL参数
}

// Get 发送GET请求
func Get(url string, options ...RequestOptions) (*Response, error) {
	return request("GET", url, options...)
}

// Post 发送POST请求
func Post(url string, options ...RequestOptions) (*Response, error) {
	return request("POST", url, options...)
}

// BrowserHeaders 构造浏览器风格的请求头，userAgent为空时使用内置UA。
func BrowserHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
}

// FetchPage 抓取状态页并返回解码后的HTML文本。
// 第一次请求正常校验TLS证书；请求出错或HTTP状态异常时关闭证书校验再试一次，
// 仍失败则返回错误，由调用方决定如何处理抓取失败。
func FetchPage(pageURL string, timeout int, userAgent string) (string, error) {
	opts := RequestOptions{
		Headers: BrowserHeaders(userAgent),
		Timeout: timeout,
	}

	resp, err := Get(pageURL, opts)
	if err == nil && resp.StatusCode < 400 {
		return resp.Text, nil
	}

	// 受限代理环境下证书校验可能失败，关闭校验重试
	opts.InsecureTLS = true
	resp, err = Get(pageURL, opts)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP状态码异常: %d", resp.StatusCode)
	}
	return resp.Text, nil
}

// request 通用请求方法
func request(method, reqURL string, options ...RequestOptions) (*Response, error) {
	// 合并选项
	opts := RequestOptions{
		Headers: make(map[string]string),
		Timeout: 30,
	}
	if len(options) > 0 {
		if options[0].Headers != nil {
			for k, v := range options[0].Headers {
				opts.Headers[k] = v
			}
		}
		if options[0].Timeout > 0 {
			opts.Timeout = options[0].Timeout
		}
		if options[0].Data != nil {
			opts.Data = options[0].Data
		}
		if options[0].JSON != nil {
			opts.JSON = options[0].JSON
		}
		if options[0].Params != nil {
			opts.Params = options[0].Params
		}
		opts.InsecureTLS = options[0].InsecureTLS
	}

	// 处理URL参数
	if opts.Params != nil {
		reqURL = addURLParams(reqURL, opts.Params)
	}

	// 创建HTTP客户端
	client := createHTTPClient(opts.Timeout, opts.InsecureTLS)

	// 准备请求体
	var body io.Reader
	if opts.JSON != nil {
		jsonData, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("序列化JSON失败: %v", err)
		}
		body = bytes.NewBuffer(jsonData)
		if opts.Headers["Content-Type"] == "" {
			opts.Headers["Content-Type"] = "application/json"
		}
	} else if opts.Data != nil {
		switch data := opts.Data.(type) {
		case string:
			body = strings.NewReader(data)
		case []byte:
			body = bytes.NewReader(data)
		case io.Reader:
			body = data
		case map[string]string:
			// 表单数据
			formData := url.Values{}
			for k, v := range data {
				formData.Set(k, v)
			}
			body = strings.NewReader(formData.Encode())
			if opts.Headers["Content-Type"] == "" {
				opts.Headers["Content-Type"] = "application/x-www-form-urlencoded"
			}
		default:
			return nil, fmt.Errorf("不支持的数据类型: %T", data)
		}
	}

	// 创建请求
	req, err := http.NewRequest(method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %v", err)
	}

	// 设置默认请求头
	setDefaultHeaders(req, opts.Headers)

	// 发送请求
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %v", err)
	}

	// 创建Response对象
	return newResponse(resp)
}

// createHTTPClient 创建HTTP客户端。自建Transport不读取环境代理设置，
// 避免系统代理干扰证书校验。
func createHTTPClient(timeout int, insecure bool) *http.Client {
	transport := &http.Transport{}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Timeout:   time.Duration(timeout) * time.Second,
		Transport: transport,
	}
}

// setDefaultHeaders 设置默认请求头
func setDefaultHeaders(req *http.Request, headers map[string]string) {
	// 设置默认User-Agent
	if req.Header.Get("User-Agent") == "" && headers["User-Agent"] == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	// 设置自定义请求头
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

// addURLParams 添加URL参数
func addURLParams(reqURL string, params map[string]string) string {
	u, err := url.Parse(reqURL)
	if err != nil {
		return reqURL
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// newResponse 创建Response对象
func newResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	// 读取响应体
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %v", err)
	}

	// 按Content-Type与页面meta声明自动识别编码，统一转成UTF-8
	text := string(content)
	if reader, cerr := charset.NewReader(bytes.NewReader(content), resp.Header.Get("Content-Type")); cerr == nil {
		if decoded, derr := io.ReadAll(reader); derr == nil {
			text = string(decoded)
		}
	}

	// 转换响应头
	headers := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	response := &Response{
		Response: resp,
		Text:     text,
		Content:  content,
		URL:      resp.Request.URL.String(),
		Headers:  headers,
		JSON: func(v interface{}) error {
			return json.Unmarshal(content, v)
		},
	}

	return response, nil
}
