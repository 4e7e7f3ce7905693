package event_test

const restGetItem = `{
	"resource": "/{proxy+}",
	"path": "/prod/items/5",
	"httpMethod": "get",
	"headers": {"Host": "abc.execute-api.us-east-1.amazonaws.com", "X-Single": "only"},
	"multiValueHeaders": {"Host": ["abc.execute-api.us-east-1.amazonaws.com"], "Accept": ["text/html", "application/json"]},
	"queryStringParameters": {"b": "2", "a": "last", "c": "3"},
	"multiValueQueryStringParameters": {"b": ["1", "2"], "a": ["first", "last"]},
	"pathParameters": {"proxy": "items/5"},
	"requestContext": {
		"stage": "prod",
		"domainName": "abc.execute-api.us-east-1.amazonaws.com",
		"identity": {"sourceIp": "1.2.3.4"}
	},
	"body": null,
	"isBase64Encoded": false
}`

const restMergeHeaders = `{
	"resource": "/",
	"path": "/",
	"httpMethod": "GET",
	"headers": {"A": "1"},
	"multiValueHeaders": {"A": ["1", "2"]},
	"requestContext": {"identity": {"sourceIp": "1.2.3.4"}}
}`

const restBinaryPost = `{
	"resource": "/upload",
	"path": "/upload",
	"httpMethod": "POST",
	"multiValueHeaders": {"Content-Type": ["application/octet-stream"]},
	"body": "/wAQ",
	"isBase64Encoded": true,
	"requestContext": {"identity": {"sourceIp": "1.2.3.4"}}
}`

const restBadBase64 = `{
	"resource": "/upload",
	"path": "/upload",
	"httpMethod": "POST",
	"multiValueHeaders": {},
	"body": "%%%not base64",
	"isBase64Encoded": true,
	"requestContext": {}
}`

const httpGetTwoCookies = `{
	"version": "2.0",
	"routeKey": "$default",
	"rawPath": "/items/5",
	"rawQueryString": "key=value1+value2&k%20y=%E6%97%A5&key=x&flag",
	"cookies": ["a=1", "b=2"],
	"headers": {"x-forwarded-proto": "https", "accept": "text/html,application/json"},
	"pathParameters": {"id": "5"},
	"requestContext": {
		"domainName": "abc.execute-api.us-east-1.amazonaws.com",
		"stage": "$default",
		"http": {"method": "get", "path": "/items/5", "sourceIp": "5.6.7.8"}
	},
	"isBase64Encoded": false,
	"body": "hello"
}`

const httpDefaultEndpointStage = `{
	"version": "2.0",
	"rawPath": "/beta/items/5",
	"rawQueryString": "",
	"headers": {},
	"requestContext": {
		"domainName": "abc.execute-api.us-east-1.amazonaws.com",
		"stage": "beta",
		"http": {"method": "DELETE", "sourceIp": "5.6.7.8"}
	}
}`

const functionURLPost = `{
	"version": "2.0",
	"rawPath": "/path%20with/space",
	"rawQueryString": "",
	"headers": {"content-type": "application/x-www-form-urlencoded"},
	"requestContext": {
		"domainName": "xyz.lambda-url.us-east-1.on.aws",
		"http": {"method": "POST", "sourceIp": "9.9.9.9"}
	},
	"body": "a2V5MT12YWx1ZTEma2V5Mj12YWx1ZTImT2s9T2s=",
	"isBase64Encoded": true
}`
